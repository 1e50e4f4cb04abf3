// Package config loads process configuration from the environment and
// host-surface geometry constants from an optional desktop.yaml.
package config
