package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ProgressBar creates and manages progress bars
type ProgressBar struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

// NewProgressBar creates a new progress bar for count tests
func NewProgressBar(count int, out io.Writer) *ProgressBar {
	p := &ProgressBar{out: out}
	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return p
}

// Update updates the progress bar with passed and failed counts
func (p *ProgressBar) Update(completed, passed, failed int) {
	p.bar.Set(completed)
	p.bar.Describe(describe(passed, failed))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

func describe(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

// IsTerminal reports whether f is an interactive terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
