// Package digest hashes Quil program text so jobs and cached results
// can be identified by content rather than by name.
package digest
