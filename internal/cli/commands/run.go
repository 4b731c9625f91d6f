package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gunit/internal/domain"
	"gunit/internal/execution"
	"gunit/internal/metrics"
	"gunit/internal/ui"
)

// ErrTestsFailed is returned by run when at least one test failed
var ErrTestsFailed = errors.New("tests failed")

// RunCommand handles the run command
type RunCommand struct {
	commands *Commands
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(c *Commands) *RunCommand {
	return &RunCommand{commands: c}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	env, err := rc.commands.environment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	return Run(cmd.Context(), env, rc.commands.flags.OpenFailures)
}

// Run discovers, executes and stores the selected tests
func Run(ctx context.Context, env *Environment, openFailures bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	found, err := env.Discover()
	if err != nil {
		return err
	}
	if len(found.Selected) == 0 {
		color.New(color.FgYellow).Fprintln(env.Out, "No tests to execute")
		return nil
	}

	cfg := env.Config
	collector := metrics.NewCollector()
	runner := execution.NewRunner(cfg, env.Logger, collector)
	pool := execution.NewWorkerPool(cfg, runner, execution.NewFixtureScheduler(), env.Logger)
	if ui.IsTerminal(os.Stderr) {
		pool.SetProgress(ui.NewProgressBar(len(found.Selected), os.Stderr))
	}

	results, duration, runErr := pool.ExecuteWithOptions(ctx, found.Selected, cfg.FailFast)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	collector.ObserveRun(cfg.Workers, duration)

	failures := env.Parser.Parse(results)
	if err := env.Storage.Save(results, failures, duration, cfg.Workers); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	if path := cfg.GetMetricsPath(); path != "" {
		if err := collector.Write(path); err != nil {
			env.Logger.Warn("failed to write metrics", zap.String("path", path), zap.Error(err))
		}
	}

	tree := aggregate(found.Root, results)
	output, err := env.Storage.Load()
	if err != nil {
		return fmt.Errorf("failed to load test results: %w", err)
	}
	env.Formatter.PrintMetaStats(output)

	if runErr != nil {
		return runErr
	}
	if tree == nil || !tree.Status().IsFailure() {
		return nil
	}
	if openFailures && ui.IsTerminal(os.Stdout) {
		if err := env.Viewer.View(output); err != nil {
			return err
		}
	}
	return ErrTestsFailed
}

// aggregate builds the result tree for the executed leaves
func aggregate(root *domain.Suite, results []*domain.Result) *domain.Result {
	leaves := make(map[string]*domain.Result, len(results))
	for _, r := range results {
		leaves[r.Node().ID()] = r
	}
	return domain.Aggregate(root, leaves)
}
