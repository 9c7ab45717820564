package dynvar

import (
	"sort"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/dynbind-go/internal/core/domain"
	"github.com/yndnr/dynbind-go/internal/telemetry/logger"
	"github.com/yndnr/dynbind-go/pkg/cmap"
)

// Observer receives binding-runtime events, typically to export metrics.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	RootChanged(op string)
	ValidationRejected(op string)
	FramePushed(size int)
	FramePopped()
	FramesReleased(depth int)
	ThreadAttached()
	ThreadDetached()
}

type nopObserver struct{}

func (nopObserver) RootChanged(string)        {}
func (nopObserver) ValidationRejected(string) {}
func (nopObserver) FramePushed(int)           {}
func (nopObserver) FramePopped()              {}
func (nopObserver) FramesReleased(int)        {}
func (nopObserver) ThreadAttached()           {}
func (nopObserver) ThreadDetached()           {}

// Runtime owns the namespace registry and the thread registry.
type Runtime struct {
	namespaces *cmap.Map[string, *Namespace]
	threads    *cmap.Map[ThreadID, *Thread]

	logger logger.Logger
	obs    Observer

	threadShards    int
	namespaceShards int
}

// Option configures the Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(r *Runtime) {
		r.obs = o
	}
}

// WithThreadShards sets the shard count of the thread registry.
func WithThreadShards(n int) Option {
	return func(r *Runtime) {
		r.threadShards = n
	}
}

// WithNamespaceShards sets the shard count of the namespace registry.
func WithNamespaceShards(n int) Option {
	return func(r *Runtime) {
		r.namespaceShards = n
	}
}

// NewRuntime creates an empty runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		logger:          logger.Default(),
		obs:             nopObserver{},
		threadShards:    cmap.DefaultShardCount,
		namespaceShards: cmap.DefaultShardCount,
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.obs == nil {
		r.obs = nopObserver{}
	}

	r.namespaces = cmap.NewWithShards[string, *Namespace](r.namespaceShards)
	r.threads = cmap.NewWithShards[ThreadID, *Thread](r.threadShards)
	return r
}

// ============================================================================
// Thread registry
// ============================================================================

// NewThread attaches a new thread with a fresh ULID identity.
func (r *Runtime) NewThread() *Thread {
	return r.Thread(ThreadID(ulid.Make().String()))
}

// Thread returns the thread registered under id, attaching it first if
// needed. Its stack starts at the empty base frame.
func (r *Runtime) Thread(id ThreadID) *Thread {
	if th, ok := r.threads.Get(id); ok {
		return th
	}
	th, loaded := r.threads.GetOrSet(id, &Thread{id: id, rt: r})
	if !loaded {
		r.obs.ThreadAttached()
		r.logger.Debug("thread attached", "thread_id", string(id))
	}
	return th
}

// LookupThread returns the thread registered under id.
func (r *Runtime) LookupThread(id ThreadID) (*Thread, bool) {
	return r.threads.Get(id)
}

// Detach releases any frames still pending on th and removes it from the
// registry. This is the path for returning a thread to a pool.
func (r *Runtime) Detach(th *Thread) {
	depth := th.Depth()
	if depth > 0 {
		// Release only fails at the base frame, excluded above.
		_ = th.Release()
	}
	if _, ok := r.threads.Pop(th.id); ok {
		r.obs.ThreadDetached()
		r.logger.Debug("thread detached",
			"thread_id", string(th.id),
			"released_frames", depth,
		)
	}
}

// ThreadCount returns the number of attached threads.
func (r *Runtime) ThreadCount() int {
	return r.threads.Count()
}

// Go runs fn on a new goroutine with a new thread whose bindings start as a
// copy of parent's current bindings. The copy gets fresh slots: Set on the
// child never affects parent. The returned channel yields fn's error (or
// the push error) once the child thread is detached, and is then closed.
//
// Go must be called from parent's goroutine.
func (r *Runtime) Go(parent *Thread, fn func(th *Thread) error) <-chan error {
	var snapshot map[*Var]any
	if parent != nil {
		snapshot = parent.Bindings()
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- r.runConveyed(snapshot, fn)
	}()
	return done
}

// runConveyed runs fn on a fresh thread holding snapshot. The thread is
// detached before the result is returned.
func (r *Runtime) runConveyed(snapshot map[*Var]any, fn func(th *Thread) error) error {
	th := r.NewThread()
	defer r.Detach(th)

	if len(snapshot) > 0 {
		if err := th.Push(snapshot); err != nil {
			r.logger.Warn("failed to convey bindings",
				"thread_id", string(th.id),
				"error", err,
			)
			return err
		}
	}
	return fn(th)
}

// ============================================================================
// Namespace registry
// ============================================================================

// FindOrCreateNamespace returns the namespace called name, creating it if
// needed.
func (r *Runtime) FindOrCreateNamespace(name string) *Namespace {
	if ns, ok := r.namespaces.Get(name); ok {
		return ns
	}
	ns, loaded := r.namespaces.GetOrSet(name, newNamespace(r, name))
	if !loaded {
		r.logger.Debug("namespace created", "ns", name)
	}
	return ns
}

// FindNamespace returns the namespace called name.
func (r *Runtime) FindNamespace(name string) (*Namespace, bool) {
	return r.namespaces.Get(name)
}

// RemoveNamespace drops the namespace called name. Vars already resolved
// from it keep working.
func (r *Runtime) RemoveNamespace(name string) bool {
	_, ok := r.namespaces.Pop(name)
	return ok
}

// Namespaces returns the sorted names of every namespace.
func (r *Runtime) Namespaces() []string {
	names := r.namespaces.Keys()
	sort.Strings(names)
	return names
}

// Find resolves a namespace-qualified symbol to its var.
func (r *Runtime) Find(sym domain.Symbol) (*Var, error) {
	if !sym.Qualified() {
		return nil, domain.ErrLookup.
			WithSubject(sym.String()).
			WithDetails("symbol must be namespace-qualified")
	}
	ns, ok := r.FindNamespace(sym.Ns)
	if !ok {
		return nil, domain.ErrLookup.
			WithSubject(sym.String()).
			WithDetails("no such namespace: " + sym.Ns)
	}
	v, ok := ns.FindInterned(sym.Name)
	if !ok {
		return nil, domain.ErrLookup.
			WithSubject(sym.String()).
			WithDetails("no such var: " + sym.Name)
	}
	return v, nil
}

// Intern returns the var nsName/name, creating the namespace and var as
// needed.
func (r *Runtime) Intern(nsName, name string) *Var {
	return r.FindOrCreateNamespace(nsName).Intern(name)
}

// InternRoot interns nsName/name and binds its root to root unless the var
// already has a root and replaceRoot is false.
func (r *Runtime) InternRoot(nsName, name string, root any, replaceRoot bool) (*Var, error) {
	v := r.Intern(nsName, name)
	if !v.HasRoot() || replaceRoot {
		if err := v.BindRoot(root); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// InternPrivate interns nsName/name and marks it private.
func (r *Runtime) InternPrivate(nsName, name string) *Var {
	v := r.Intern(nsName, name)
	v.SetMeta(NewMeta(map[string]any{MetaPrivate: true}))
	return v
}
