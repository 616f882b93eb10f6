package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joeycumines/goap/internal/agent"
	"github.com/joeycumines/goap/internal/config"
	"github.com/joeycumines/goap/internal/goap"
	"github.com/joeycumines/goap/internal/scenario"
)

// RunCommand plans a scenario, then executes the plan with an agent,
// reporting each notification as it happens.
type RunCommand struct {
	*BaseCommand
	config *config.Config

	tick     time.Duration
	timeout  time.Duration
	skip     string
	color    string
	logFile  string
	logLevel string

	// ctxFactory creates the context execution runs under. Defaults to one
	// cancelled on SIGINT or SIGTERM.
	ctxFactory func() (context.Context, context.CancelFunc)
}

// NewRunCommand creates a new run command.
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Plan a scenario and execute the plan",
			"run [options] FILE",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the run command.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	fs.DurationVar(&c.tick, "tick", 0, "Interval between execution ticks (default from config run.tick-interval)")
	fs.DurationVar(&c.timeout, "timeout", 0, "Abandon execution after this long, 0 for no limit (default from config run.timeout)")
	fs.StringVar(&c.skip, "skip", "", "Comma-separated action names to remove before planning")
	fs.StringVar(&c.color, "color", "", "Color output: auto, always or never (default from config color)")
	fs.StringVar(&c.logFile, "log-file", "", "Path to log file (JSON output)")
	fs.StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// Execute runs the scenario. The error is nil only if the plan was found
// and every action completed.
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: goap %s\n", c.Usage())
		return fmt.Errorf("expected exactly one scenario file, got %d", len(args))
	}

	schema := config.DefaultSchema()

	tick := c.tick
	if tick <= 0 {
		d, err := schema.ResolveDuration(c.config, c.Name(), config.KeyRunTickInterval)
		if err != nil {
			return err
		}
		tick = d
	}
	timeout := c.timeout
	if timeout <= 0 {
		d, err := schema.ResolveDuration(c.config, c.Name(), config.KeyRunTimeout)
		if err != nil {
			return err
		}
		timeout = d
	}

	colorMode := c.color
	if colorMode == "" {
		colorMode = schema.ResolveCommand(c.config, c.Name(), config.KeyColor)
	}
	r, err := newRenderer(stdout, colorMode)
	if err != nil {
		return err
	}

	lc, err := resolveLogConfig(c.Name(), c.logFile, c.logLevel, c.config)
	if err != nil {
		return err
	}
	defer lc.close()
	logger := lc.logger(stderr)

	s, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	a, err := s.NewAgent(
		agent.WithID(s.Name),
		agent.WithTickInterval(tick),
		agent.WithLogger(logger),
		agent.WithListener(agent.MultiListener{
			printListener(r),
			agent.LogListener{Logger: logger},
		}),
	)
	if err != nil {
		return err
	}
	if err := removeActions(a, c.skip); err != nil {
		return err
	}

	start := a.WorldState()
	r.facts("start:", start)

	ctx, cancel := c.newContext()
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
		defer cancelTimeout()
	}

	err = a.Pursue(ctx, s.Goal)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		r.event(false, "execution stopped: %v", err)
	}

	final := a.WorldState()
	r.facts("final:", final)
	r.changes(start, final)
	return err
}

// removeActions unregisters the comma-separated action names from a. Every
// name must match a registered action.
func removeActions(a *agent.Agent, names string) error {
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var removed bool
		for _, action := range a.Actions() {
			if goap.Name(action) == name {
				removed = a.RemoveAction(action)
				break
			}
		}
		if !removed {
			return fmt.Errorf("unknown action: %q", name)
		}
	}
	return nil
}

func (c *RunCommand) newContext() (context.Context, context.CancelFunc) {
	if c.ctxFactory != nil {
		return c.ctxFactory()
	}
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// printListener reports agent notifications through r.
func printListener(r *renderer) agent.Listener {
	return agent.ListenerFuncs{
		OnPlanFound: func(_ *agent.Agent, _ goap.WorldState, plan []goap.Action) {
			r.event(true, "plan found: %s (cost %s)", stepNames(plan), formatCost(goap.TotalCost(plan)))
		},
		OnPlanFailed: func(_ *agent.Agent, goal goap.WorldState) {
			r.event(false, "plan failed: no plan reaches %s", goal)
		},
		OnActionsFinished: func(*agent.Agent) {
			r.event(true, "actions finished")
		},
		OnPlanAborted: func(_ *agent.Agent, aborter goap.Action) {
			r.event(false, "plan aborted by %s", goap.Name(aborter))
		},
	}
}
