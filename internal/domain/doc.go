// Package domain defines the types shared between backends, stores and
// the CLI: result handles, statuses, results, backend capabilities and
// the Backend interface itself.
package domain
