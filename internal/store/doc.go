// Package store provides file-based persistence for submissions made
// from the CLI.
//
// Result handles returned by the asynchronous backends are only useful
// across invocations if the handle-to-job mapping survives the process,
// so HandleStore keeps one JSON file per handle under the user's home
// directory. All methods are concurrency-safe via internal locking and
// writes go through a temp file and rename.
package store
