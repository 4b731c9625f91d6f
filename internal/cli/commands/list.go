package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gunit/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	commands *Commands
}

// NewListCommand creates a new ListCommand
func NewListCommand(c *Commands) *ListCommand {
	return &ListCommand{commands: c}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	env, err := lc.commands.environment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	return List(env, lc.commands.flags.TestCases)
}

// List prints the discovered test tree, marking tests that failed last run
func List(env *Environment, showTestCases bool) error {
	found, err := env.Discover()
	if err != nil {
		return err
	}
	if len(found.Selected) == 0 {
		color.New(color.FgYellow).Fprintln(env.Out, "No tests found")
		return nil
	}

	opts := ui.TreeOptions{
		ShowTestCases: showTestCases,
		Failed:        env.lastFailures(),
	}
	if found.Filtered {
		opts.Selected = make(map[string]bool, len(found.Selected))
		for _, tc := range found.Selected {
			opts.Selected[tc.ID()] = true
		}
	}
	env.Formatter.PrintTree(found.Root, opts)
	return nil
}
