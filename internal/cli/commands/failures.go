package commands

import (
	"os"

	"github.com/spf13/cobra"

	"gunit/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	commands *Commands
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(c *Commands) *FailuresCommand {
	return &FailuresCommand{commands: c}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	env, err := fc.commands.environment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	results, err := env.Storage.Load()
	if err != nil {
		return err
	}
	if fc.commands.flags.Print || !ui.IsTerminal(os.Stdout) {
		env.Formatter.PrintMetaStats(results)
		return nil
	}
	return env.Viewer.View(results)
}
