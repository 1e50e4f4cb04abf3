// Package registry implements the ordered window-descriptor list
// shared between the window manager and enumeration surfaces such as
// the taskbar.
package registry
