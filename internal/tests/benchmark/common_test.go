package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/dynbind-go/internal/core/dynvar"
)

// VarCounts defines how many vars are bound per frame.
var VarCounts = []int{1, 4, 16, 64}

// Depths defines binding stack depths.
var Depths = []int{1, 8, 32}

// newVars interns count vars with integer roots.
func newVars(b *testing.B, rt *dynvar.Runtime, count int) []*dynvar.Var {
	b.Helper()
	vars := make([]*dynvar.Var, count)
	for i := range vars {
		v, err := rt.InternRoot("bench", fmt.Sprintf("v%d", i), i, true)
		if err != nil {
			b.Fatalf("InternRoot failed: %v", err)
		}
		vars[i] = v
	}
	return vars
}

// frameOf binds every var to val.
func frameOf(vars []*dynvar.Var, val any) map[*dynvar.Var]any {
	frame := make(map[*dynvar.Var]any, len(vars))
	for _, v := range vars {
		frame[v] = val
	}
	return frame
}

// incr adds one to an int root.
func incr(old any, _ ...any) (any, error) {
	return old.(int) + 1, nil
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithCounts runs a benchmark function with various sizes.
func runWithCounts(b *testing.B, label string, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("%s_%d", label, count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
