// Package forest implements the execution backends: Backend runs
// shot-based circuits through the executor's asynchronous jobs API and
// StateBackend fetches full statevectors and operator expectations
// through the synchronous one.
//
// Both satisfy domain.Backend. The usual flow is compile, submit,
// poll, fetch:
//
//	pass := b.DefaultCompilationPass(1)
//	if _, err := pass.Apply(c); err != nil { ... }
//	handles, err := b.ProcessCircuits(ctx, []*circuit.Circuit{c}, []int{100}, domain.ProcessOptions{})
//	res, err := domain.WaitResult(ctx, b, handles[0], time.Second)
//
// Backend handles survive the process when the backend is built with a
// handle store; StateBackend handles never do.
package forest
