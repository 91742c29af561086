// Package quil builds, renders and parses the subset of Quil spoken by
// the QVM: gate applications, memory declarations, measurements,
// fences, resets and pragmas. Angles are radians in this package;
// callers converting from half-turn circuit angles multiply by pi
// before constructing gates.
package quil
