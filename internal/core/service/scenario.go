package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yndnr/dynbind-go/internal/core/domain"
	"github.com/yndnr/dynbind-go/internal/core/dynvar"
	"github.com/yndnr/dynbind-go/internal/telemetry/logger"
)

// Thread labels used in scenario steps.
const (
	threadMain  = "main"
	threadFresh = "fresh"
	threadChild = "child"
)

// ErrUnknownScenario is returned by Run for a name that is not registered.
var ErrUnknownScenario = domain.ErrInvalidArgument.WithDetails("unknown scenario")

// Step is one observed operation in a scenario.
type Step struct {
	Thread string `json:"thread" yaml:"thread"`
	Op     string `json:"op" yaml:"op"`
	Result string `json:"result" yaml:"result"`
	OK     bool   `json:"ok" yaml:"ok"`
}

// ScenarioResult is the outcome of one scenario run.
type ScenarioResult struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Passed      bool   `json:"passed" yaml:"passed"`
	Steps       []Step `json:"steps" yaml:"steps"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Scenario is a scripted sequence of binding operations.
type Scenario struct {
	Name        string
	Description string
	run         func(ns string, rt *dynvar.Runtime, r *recorder)
}

// DemoService runs the built-in scenarios against a runtime.
type DemoService struct {
	rt     *dynvar.Runtime
	logger logger.Logger
}

// NewDemoService creates a DemoService. A nil logger uses the default.
func NewDemoService(rt *dynvar.Runtime, log logger.Logger) *DemoService {
	if log == nil {
		log = logger.Default()
	}
	return &DemoService{rt: rt, logger: log}
}

// Scenarios lists the registered scenarios in run order.
func (s *DemoService) Scenarios() []Scenario {
	return scenarios
}

// Run executes the named scenarios, or all of them when names is empty.
// Each scenario works in its own namespace which is removed afterwards.
func (s *DemoService) Run(ctx context.Context, names ...string) ([]ScenarioResult, error) {
	selected := scenarios
	if len(names) > 0 {
		selected = make([]Scenario, 0, len(names))
		for _, name := range names {
			sc, ok := lookupScenario(name)
			if !ok {
				return nil, ErrUnknownScenario.WithSubject(name)
			}
			selected = append(selected, sc)
		}
	}

	results := make([]ScenarioResult, 0, len(selected))
	for _, sc := range selected {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.runOne(sc))
	}
	return results, nil
}

func (s *DemoService) runOne(sc Scenario) ScenarioResult {
	ns := "demo." + sc.Name
	defer s.rt.RemoveNamespace(ns)

	r := &recorder{}
	sc.run(ns, s.rt, r)

	res := ScenarioResult{
		Name:        sc.Name,
		Description: sc.Description,
		Passed:      r.err == nil,
		Steps:       r.steps,
	}
	if r.err != nil {
		res.Error = r.err.Error()
		s.logger.Warn("scenario failed", "scenario", sc.Name, "error", r.err)
	} else {
		s.logger.Debug("scenario passed", "scenario", sc.Name, "steps", len(r.steps))
	}
	return res
}

func lookupScenario(name string) (Scenario, bool) {
	for _, sc := range scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}

// recorder collects steps and keeps the first mismatch.
type recorder struct {
	steps []Step
	err   error
}

func (r *recorder) add(thread, op, result string, ok bool, mismatch error) {
	r.steps = append(r.steps, Step{Thread: thread, Op: op, Result: result, OK: ok})
	if !ok && r.err == nil {
		r.err = fmt.Errorf("%s: %s: %w", thread, op, mismatch)
	}
}

// value records an operation expected to succeed with want.
func (r *recorder) value(thread, op string, got any, err error, want any) {
	if err != nil {
		r.add(thread, op, describeError(err), false, err)
		return
	}
	ok := got == want
	r.add(thread, op, fmt.Sprint(got), ok, fmt.Errorf("got %v, want %v", got, want))
}

// ok records an operation expected to succeed.
func (r *recorder) ok(thread, op string, err error) {
	if err != nil {
		r.add(thread, op, describeError(err), false, err)
		return
	}
	r.add(thread, op, "ok", true, nil)
}

// fails records an operation expected to fail with want.
func (r *recorder) fails(thread, op string, err error, want error) {
	if err == nil {
		r.add(thread, op, "ok", false, fmt.Errorf("succeeded, want %v", want))
		return
	}
	r.add(thread, op, describeError(err), errors.Is(err, want), err)
}

func describeError(err error) string {
	if code := domain.GetErrorCode(err); code != "" {
		return "error " + code
	}
	return "error: " + err.Error()
}

func onFresh(rt *dynvar.Runtime, fn func(th *dynvar.Thread) (any, error)) (any, error) {
	var got any
	err := <-rt.Go(nil, func(th *dynvar.Thread) error {
		var err error
		got, err = fn(th)
		return err
	})
	return got, err
}

func getOn(v *dynvar.Var) func(th *dynvar.Thread) (any, error) {
	return func(th *dynvar.Thread) (any, error) { return v.Get(th) }
}

func increment(old any, _ ...any) (any, error) {
	n, ok := old.(int)
	if !ok {
		return nil, fmt.Errorf("not an int: %v", old)
	}
	return n + 1, nil
}

func positiveInt(val any) error {
	n, ok := val.(int)
	if !ok || n <= 0 {
		return fmt.Errorf("want positive int, got %v", val)
	}
	return nil
}

const concurrentAlters = 64

var scenarios = []Scenario{
	{
		Name:        "unbound",
		Description: "push, set and pop a var with no root",
		run: func(ns string, rt *dynvar.Runtime, r *recorder) {
			th := rt.NewThread()
			defer rt.Detach(th)
			c := rt.Intern(ns, "c")

			r.ok(threadMain, "push {c 10}", th.Push(map[*dynvar.Var]any{c: 10}))
			got, err := c.Get(th)
			r.value(threadMain, "get c", got, err, 10)
			_, err = c.Set(th, 20)
			r.ok(threadMain, "set c 20", err)
			got, err = c.Get(th)
			r.value(threadMain, "get c", got, err, 20)
			r.ok(threadMain, "pop", th.Pop())
			r.value(threadMain, "bound? c", c.IsBound(th), nil, false)
			_, err = c.Get(th)
			r.fails(threadMain, "get c", err, domain.ErrUnbound)
		},
	},
	{
		Name:        "root",
		Description: "thread bindings hide the root only on the binding thread",
		run: func(ns string, rt *dynvar.Runtime, r *recorder) {
			th := rt.NewThread()
			defer rt.Detach(th)
			c := rt.Intern(ns, "c")

			r.ok(threadMain, "bind-root c 1", c.BindRoot(1))
			r.ok(threadMain, "push {c 2}", th.Push(map[*dynvar.Var]any{c: 2}))
			got, err := c.Get(th)
			r.value(threadMain, "get c", got, err, 2)
			got, err = onFresh(rt, getOn(c))
			r.value(threadFresh, "get c", got, err, 1)
			r.ok(threadMain, "pop", th.Pop())
			got, err = c.Get(th)
			r.value(threadMain, "get c", got, err, 1)
		},
	},
	{
		Name:        "shadowing",
		Description: "an inner binding shadows an outer one until popped",
		run: func(ns string, rt *dynvar.Runtime, r *recorder) {
			th := rt.NewThread()
			defer rt.Detach(th)
			x := rt.Intern(ns, "x")

			r.ok(threadMain, "bind-root x root", x.BindRoot("root"))
			r.ok(threadMain, "push {x outer}", th.Push(map[*dynvar.Var]any{x: "outer"}))
			r.ok(threadMain, "push {x inner}", th.Push(map[*dynvar.Var]any{x: "inner"}))
			got, err := x.Get(th)
			r.value(threadMain, "get x", got, err, "inner")
			r.value(threadMain, "bind-count x", x.BindCount(), nil, int64(2))
			r.ok(threadMain, "pop", th.Pop())
			got, err = x.Get(th)
			r.value(threadMain, "get x", got, err, "outer")
			r.ok(threadMain, "pop", th.Pop())
			got, err = x.Get(th)
			r.value(threadMain, "get x", got, err, "root")
		},
	},
	{
		Name:        "conveyance",
		Description: "a child thread starts with the parent's bindings and sets them privately",
		run: func(ns string, rt *dynvar.Runtime, r *recorder) {
			th := rt.NewThread()
			defer rt.Detach(th)
			c := rt.Intern(ns, "c")

			r.ok(threadMain, "bind-root c 0", c.BindRoot(0))
			r.ok(threadMain, "push {c 1}", th.Push(map[*dynvar.Var]any{c: 1}))

			var childGot any
			err := <-rt.Go(th, func(child *dynvar.Thread) error {
				if _, err := c.Set(child, 99); err != nil {
					return err
				}
				var err error
				childGot, err = c.Get(child)
				return err
			})
			r.value(threadChild, "set c 99; get c", childGot, err, 99)
			got, err := c.Get(th)
			r.value(threadMain, "get c", got, err, 1)
			got, err = c.GetRoot()
			r.value(threadMain, "root c", got, err, 0)
			r.ok(threadMain, "pop", th.Pop())
		},
	},
	{
		Name:        "validator",
		Description: "a validator rejects a root without changing state",
		run: func(ns string, rt *dynvar.Runtime, r *recorder) {
			th := rt.NewThread()
			defer rt.Detach(th)
			c := rt.Intern(ns, "c")

			r.ok(threadMain, "set-validator c pos-int", c.SetValidator(positiveInt))
			r.fails(threadMain, "bind-root c -1", c.BindRoot(-1), domain.ErrValidation)
			r.value(threadMain, "bound? c", c.IsBound(th), nil, false)
			r.ok(threadMain, "bind-root c 5", c.BindRoot(5))
			_, err := c.Set(th, 6)
			r.fails(threadMain, "set c 6", err, domain.ErrNoThreadBinding)
			r.fails(threadMain, "push {c 0}", th.Push(map[*dynvar.Var]any{c: 0}), domain.ErrValidation)
			r.value(threadMain, "depth", th.Depth(), nil, 0)
		},
	},
	{
		Name:        "release",
		Description: "releasing a thread discards every frame and bind count",
		run: func(ns string, rt *dynvar.Runtime, r *recorder) {
			th := rt.NewThread()
			defer rt.Detach(th)
			a := rt.Intern(ns, "a")
			b := rt.Intern(ns, "b")

			r.ok(threadMain, "push {a 1 b 2}", th.Push(map[*dynvar.Var]any{a: 1, b: 2}))
			r.ok(threadMain, "push {a 3}", th.Push(map[*dynvar.Var]any{a: 3}))
			r.value(threadMain, "bind-count a", a.BindCount(), nil, int64(2))
			r.value(threadMain, "bind-count b", b.BindCount(), nil, int64(1))
			r.ok(threadMain, "release", th.Release())
			r.value(threadMain, "bind-count a", a.BindCount(), nil, int64(0))
			r.value(threadMain, "bind-count b", b.BindCount(), nil, int64(0))
			r.fails(threadMain, "pop", th.Pop(), domain.ErrStackUnderflow)
		},
	},
	{
		Name:        "concurrent-alter",
		Description: "concurrent root alterations are applied exactly once each",
		run: func(ns string, rt *dynvar.Runtime, r *recorder) {
			c, err := rt.InternRoot(ns, "counter", 0, true)
			r.ok(threadMain, "intern counter 0", err)
			if err != nil {
				return
			}

			var wg sync.WaitGroup
			errs := make(chan error, concurrentAlters)
			for i := 0; i < concurrentAlters; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := c.AlterRoot(increment); err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)

			r.ok(threadMain, fmt.Sprintf("alter-root counter inc x%d", concurrentAlters), <-errs)
			got, err := c.GetRoot()
			r.value(threadMain, "root counter", got, err, concurrentAlters)
		},
	},
	{
		Name:        "watches",
		Description: "watches see every committed root change",
		run: func(ns string, rt *dynvar.Runtime, r *recorder) {
			c := rt.Intern(ns, "c")
			var seen []string
			c.AddWatch("log", func(_ string, _ *dynvar.Var, oldVal, newVal any) {
				seen = append(seen, fmt.Sprintf("%v->%v", oldVal, newVal))
			})

			r.ok(threadMain, "bind-root c 1", c.BindRoot(1))
			r.ok(threadMain, "swap-root c 2", c.SwapRoot(2))
			_, err := c.AlterRoot(increment)
			r.ok(threadMain, "alter-root c inc", err)
			r.value(threadMain, "watch calls", fmt.Sprint(seen), nil, "[#<Unbound>->1 1->2 2->3]")
		},
	},
}
