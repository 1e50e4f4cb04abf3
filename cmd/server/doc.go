// Command server runs the deskos core service.
package main
