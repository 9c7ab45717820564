// Package dynvar implements dynamic vars for DynBind.
//
// A Var is a binding cell with one process-wide root value and a stack of
// per-thread overrides:
//
//   - var.go: the cell, its identity and the root mutation protocol
//   - watch.go: validator and watch plumbing shared by root mutators
//   - frame.go: Frame and Box, the per-thread override stack entries
//   - thread.go: Thread handles and Push/Pop/Release
//   - runtime.go: the thread registry and namespace registry
//   - meta.go: var metadata (private, macro, tag)
//   - invoke.go: forwarding of invocation to the current value
//
// Thread Safety:
//
// Root reads never lock. Root mutators (BindRoot, SwapRoot, AlterRoot,
// CommuteRoot, UnbindRoot) and SetValidator serialise on a per-var mutex.
// A Thread and its frames belong to exactly one goroutine at a time; every
// Thread method and every Var method taking a *Thread must be called from
// that goroutine.
//
// Usage:
//
//	rt := dynvar.NewRuntime()
//	out := rt.FindOrCreateNamespace("user").Intern("*out*")
//	_ = out.BindRoot("stdout")
//
//	th := rt.NewThread()
//	defer rt.Detach(th)
//	_ = th.With(map[*dynvar.Var]any{out: "buffer"}, func() error {
//		v, _ := out.Get(th) // "buffer"
//		_ = v
//		return nil
//	})
package dynvar
