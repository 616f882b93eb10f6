package command

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"

	"github.com/joeycumines/goap/internal/config"
	"github.com/joeycumines/goap/internal/goap"
	"github.com/joeycumines/goap/internal/predicate"
	"github.com/joeycumines/goap/internal/scenario"
	"golang.org/x/sync/errgroup"
)

// PlanCommand plans one or more scenario files, without executing them.
type PlanCommand struct {
	*BaseCommand
	config *config.Config

	format   string
	parallel int
	color    string
	logFile  string
	logLevel string
}

// NewPlanCommand creates a new plan command.
func NewPlanCommand(cfg *config.Config) *PlanCommand {
	return &PlanCommand{
		BaseCommand: NewBaseCommand(
			"plan",
			"Find the cheapest plan for each scenario file",
			"plan [options] FILE...",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the plan command.
func (c *PlanCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "", "Output format: text or json (default from config plan.format)")
	fs.IntVar(&c.parallel, "parallel", -1, "Number of scenarios planned concurrently, 0 for one per CPU (default from config plan.parallelism)")
	fs.StringVar(&c.color, "color", "", "Color output: auto, always or never (default from config color)")
	fs.StringVar(&c.logFile, "log-file", "", "Path to log file (JSON output)")
	fs.StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// Execute plans every file, printing the results in argument order. It
// returns an error if any file could not be loaded.
func (c *PlanCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintf(stderr, "Usage: goap %s\n", c.Usage())
		return errors.New("no scenario files given")
	}

	schema := config.DefaultSchema()

	format := c.format
	if format == "" {
		format = schema.ResolveCommand(c.config, c.Name(), config.KeyPlanFormat)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %q", format)
	}

	parallel := c.parallel
	if parallel < 0 {
		v, err := schema.ResolveInt(c.config, c.Name(), config.KeyPlanParallelism)
		if err != nil {
			return err
		}
		parallel = v
	}
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	lc, err := resolveLogConfig(c.Name(), c.logFile, c.logLevel, c.config)
	if err != nil {
		return err
	}
	defer lc.close()
	logger := lc.logger(stderr)
	planner := goap.NewPlanner(goap.WithLogger(logger))

	reports := planFiles(planner, args, parallel)
	logger.Debug("plan: predicate cache", "stats", predicate.DefaultCache().String())

	if format == "json" {
		if err := writePlanJSON(stdout, reports); err != nil {
			return err
		}
	} else {
		colorMode := c.color
		if colorMode == "" {
			colorMode = schema.ResolveCommand(c.config, c.Name(), config.KeyColor)
		}
		r, err := newRenderer(stdout, colorMode)
		if err != nil {
			return err
		}
		for i, rep := range reports {
			if i > 0 {
				r.print("\n")
			}
			r.writePlan(rep)
		}
	}

	var failed int
	for _, rep := range reports {
		if rep.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenario(s) failed to load", failed, len(reports))
	}
	return nil
}

// planFiles loads and plans each file, at most parallel at a time. Reports
// are returned in the order of files.
func planFiles(planner *goap.Planner, files []string, parallel int) []planReport {
	reports := make([]planReport, len(files))
	var g errgroup.Group
	g.SetLimit(parallel)
	for i, file := range files {
		g.Go(func() error {
			rep := planReport{File: file}
			s, err := scenario.Load(file)
			if err == nil {
				rep.Name = s.Name
				rep.Result, err = s.Plan(planner)
			}
			rep.Err = err
			reports[i] = rep
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

type jsonStep struct {
	Action string  `json:"action"`
	Cost   float64 `json:"cost"`
	Total  float64 `json:"total"`
}

type jsonPlan struct {
	File     string     `json:"file"`
	Name     string     `json:"name,omitempty"`
	Found    bool       `json:"found"`
	Cost     float64    `json:"cost"`
	Steps    []jsonStep `json:"steps"`
	Explored int        `json:"explored"`
	Leaves   int        `json:"leaves"`
	Error    string     `json:"error,omitempty"`
}

func writePlanJSON(w io.Writer, reports []planReport) error {
	out := make([]jsonPlan, len(reports))
	for i, rep := range reports {
		p := jsonPlan{
			File:     rep.File,
			Name:     rep.Name,
			Found:    rep.Result.Found(),
			Cost:     rep.Result.Cost,
			Steps:    []jsonStep{},
			Explored: rep.Result.Explored,
			Leaves:   rep.Result.Leaves,
		}
		if rep.Err != nil {
			p.Error = rep.Err.Error()
		}
		var total float64
		for _, a := range rep.Result.Actions {
			total += a.Cost()
			p.Steps = append(p.Steps, jsonStep{Action: goap.Name(a), Cost: a.Cost(), Total: total})
		}
		out[i] = p
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
