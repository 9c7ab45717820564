package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestProgressBar_Finish(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "stress", 10)

	p.Increment(4)
	p.Increment(6)
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "100%") {
		t.Errorf("output missing 100%%: %q", out)
	}
	if !strings.Contains(out, "(10/10") {
		t.Errorf("output missing counts: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish() should end the line")
	}
}

func TestProgressBar_Overflow(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "x", 2)
	p.Increment(5)
	p.Finish()

	if !strings.Contains(buf.String(), "100%") {
		t.Errorf("percent should be capped: %q", buf.String())
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "ops", 0)
	p.Increment(3)
	p.Finish()

	if !strings.Contains(buf.String(), "ops 3 ops") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestProgressBar_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "c", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Increment(1)
			}
		}()
	}
	wg.Wait()

	if p.Current() != 1000 {
		t.Errorf("Current() = %d, want 1000", p.Current())
	}
}

func TestOpsPerSecond(t *testing.T) {
	tests := []struct {
		n       int64
		elapsed time.Duration
		want    string
	}{
		{10, 0, "- ops/s"},
		{500, time.Second, "500 ops/s"},
		{2500, time.Second, "2.5k ops/s"},
		{3_000_000, time.Second, "3.0M ops/s"},
	}
	for _, tt := range tests {
		if got := opsPerSecond(tt.n, tt.elapsed); got != tt.want {
			t.Errorf("opsPerSecond(%d, %v) = %q, want %q", tt.n, tt.elapsed, got, tt.want)
		}
	}
}
