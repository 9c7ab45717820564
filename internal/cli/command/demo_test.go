package command

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/yndnr/dynbind-go/internal/core/service"
)

func TestDemoCommand(t *testing.T) {
	out, err := runApp(t, "demo")
	if err != nil {
		t.Fatalf("demo error = %v\n%s", err, out)
	}

	for _, want := range []string{"SCENARIO", "STATUS", "unbound", "shadowing", "PASS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "FAIL") {
		t.Errorf("no scenario should fail:\n%s", out)
	}
}

func TestDemoCommand_Wide(t *testing.T) {
	out, err := runApp(t, "--wide", "demo", "release")
	if err != nil {
		t.Fatalf("demo error = %v", err)
	}

	for _, want := range []string{"THREAD", "OP", "release", "DB-THRD-4091"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDemoCommand_JSON(t *testing.T) {
	out, err := runApp(t, "-o", "json", "demo", "root", "validator")
	if err != nil {
		t.Fatalf("demo error = %v", err)
	}

	var results []service.ScenarioResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, res := range results {
		if !res.Passed {
			t.Errorf("%s failed: %s", res.Name, res.Error)
		}
	}
}

func TestDemoCommand_List(t *testing.T) {
	out, err := runApp(t, "-o", "yaml", "demo", "--list")
	if err != nil {
		t.Fatalf("demo error = %v", err)
	}
	if !strings.Contains(out, "name: concurrent-alter") {
		t.Errorf("yaml output missing scenario:\n%s", out)
	}
}

func TestDemoCommand_Unknown(t *testing.T) {
	if _, err := runApp(t, "demo", "nope"); err == nil {
		t.Error("demo should reject an unknown scenario")
	}
}

func TestDemoReport_Table(t *testing.T) {
	report := demoReport{
		{Name: "a", Passed: true, Steps: []service.Step{{Thread: "main", Op: "pop", Result: "ok", OK: true}}},
		{Name: "b", Passed: false, Error: "boom"},
	}

	narrow := report.Table(false)
	if len(narrow.Rows) != 2 {
		t.Fatalf("narrow rows = %d, want 2", len(narrow.Rows))
	}
	if narrow.Rows[1][2] != "FAIL: boom" {
		t.Errorf("status = %q, want FAIL: boom", narrow.Rows[1][2])
	}

	wide := report.Table(true)
	if len(wide.Rows) != 1 {
		t.Fatalf("wide rows = %d, want one per step", len(wide.Rows))
	}
	if got := wide.Rows[0]; got[0] != "a" || got[3] != "pop" || got[5] != "yes" {
		t.Errorf("wide row = %v", got)
	}
}
