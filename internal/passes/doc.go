// Package passes rewrites circuits ahead of execution: register
// flattening, rebasing into a backend's native gate set, rotation
// cleanup, placement onto device nodes and SWAP routing. Every pass
// preserves circuit semantics up to the tracked global phase.
package passes
