// Package app wires application dependencies for the CLI.
//
// It builds the qvmd client, the handle store and the logger from
// Config, exposing them via the Wire struct for commands to use.
// Backends are constructed per command because the shot backend needs
// a device characterisation fetched from the executor.
package app
