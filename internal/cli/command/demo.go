package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/dynbind-go/internal/cli/output"
	"github.com/yndnr/dynbind-go/internal/core/service"
)

// DemoCommand returns the demo command.
func DemoCommand() *cli.Command {
	return &cli.Command{
		Name:      "demo",
		Usage:     "Run the built-in binding scenarios",
		ArgsUsage: "[scenario...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "List scenarios without running them",
			},
		},
		Action: runDemo,
	}
}

func runDemo(c *cli.Context) error {
	svc := service.NewDemoService(newRuntime(c), GetLogger(c))

	if c.Bool("list") {
		return render(c, scenarioList(svc.Scenarios()))
	}

	results, err := svc.Run(c.Context, c.Args().Slice()...)
	if err != nil {
		return err
	}
	if err := render(c, demoReport(results)); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.Passed {
			failed++
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d scenarios failed", failed, len(results)), 1)
	}
	return nil
}

type scenarioInfo struct {
	Name        string `json:"name" yaml:"name" table:"SCENARIO"`
	Description string `json:"description" yaml:"description" table:"DESCRIPTION"`
}

func scenarioList(scenarios []service.Scenario) []scenarioInfo {
	list := make([]scenarioInfo, len(scenarios))
	for i, sc := range scenarios {
		list[i] = scenarioInfo{Name: sc.Name, Description: sc.Description}
	}
	return list
}

// demoReport prints one row per scenario, or one row per step in wide mode.
type demoReport []service.ScenarioResult

func (r demoReport) Table(wide bool) *output.Table {
	t := &output.Table{}
	if wide {
		t.SetHeaders("SCENARIO", "#", "THREAD", "OP", "RESULT", "OK")
		for _, res := range r {
			for i, step := range res.Steps {
				t.AddRow(res.Name, strconv.Itoa(i+1), step.Thread, step.Op, step.Result, mark(step.OK))
			}
		}
		return t
	}

	t.SetHeaders("SCENARIO", "STEPS", "STATUS", "DESCRIPTION")
	for _, res := range r {
		status := "PASS"
		if !res.Passed {
			status = "FAIL: " + res.Error
		}
		t.AddRow(res.Name, strconv.Itoa(len(res.Steps)), status, res.Description)
	}
	return t
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "NO"
}
