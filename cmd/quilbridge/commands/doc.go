// Package commands defines the quilbridge CLI and wires dependencies
// for subcommands.
//
// Commands
//
//   - version      Print the build version
//   - devices      List the devices the executor serves
//   - convert      Translate a circuit between JSON and Quil
//   - compile      Compile a circuit to a backend's native form
//   - run          Compile, execute and print measurement counts
//   - submit       Submit compiled circuits and print their handles
//   - status       Report the status of a submitted circuit
//   - result       Fetch the result of a submitted circuit
//   - jobs         List submissions recorded in the handle store
//   - simulate     Print a circuit's final statevector
//   - expectation  Evaluate Pauli operator expectation values
//
// # Implementation
//
// The root command loads <home>/config.yaml, overlays any flags that
// were set, and builds a dependency graph (qvmd client, handle store,
// logger) before any subcommand runs. Backends are constructed per
// command: the shot backend needs a device characterisation fetched
// from the executor, and status/result rebuild it from the device
// name recorded with the handle.
package commands
