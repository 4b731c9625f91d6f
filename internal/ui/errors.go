package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"gunit/internal/domain"
	"gunit/internal/storage"
)

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
	out     io.Writer
	logger  *zap.Logger
}

var _ Viewer = (*ErrorViewer)(nil)

// NewErrorViewer creates a new ErrorViewer. Resolved marks are written back through st.
func NewErrorViewer(st storage.Storage, out io.Writer, logger *zap.Logger) *ErrorViewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorViewer{storage: st, out: out, logger: logger}
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		green.Fprintln(ev.out, "✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	updateListItem := func(index int) {
		if index < 0 || index >= list.GetItemCount() {
			return
		}
		list.SetItemText(index, listItemText(results.Details[index], index), "")
	}

	for i, failure := range results.Details {
		list.AddItem(listItemText(failure, i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	status := ""
	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Test Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] resolve, [yellow]C[white] copy, → details, ← back, Ctrl+C exit %s",
			len(results.Details), countUnresolved(results.Details), status))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(results.Details) {
			failure := results.Details[index]
			statsView.SetText(formatFailureStats(failure, index+1))
			detailsView.SetText(formatFailureDetails(failure))
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			index := list.GetCurrentItem()
			if index < 0 || index >= len(results.Details) {
				return event
			}
			switch event.Rune() {
			case 'r', 'R':
				toggleResolved(results, index)
				updateListItem(index)
				status = ""
				if err := ev.storage.SaveOutput(results); err != nil {
					ev.logger.Warn("failed to save resolved status", zap.Error(err))
					status = "[red](save failed)[white]"
				}
				updateHeader()
				updateDetails()
				return nil
			case 'c', 'C':
				status = "[green](copied)[white]"
				if err := clipboard.WriteAll(formatFailurePlain(results.Details[index])); err != nil {
					ev.logger.Warn("failed to copy failure", zap.Error(err))
					status = "[red](copy failed)[white]"
				}
				updateHeader()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(failure domain.TestFailure, index int) string {
	name := failure.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", index+1)
	}
	name = tview.Escape(name)
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

func countUnresolved(failures []domain.TestFailure) int {
	count := 0
	for _, f := range failures {
		if !f.Resolved {
			count++
		}
	}
	return count
}

func toggleResolved(results *domain.TestResultsOutput, index int) {
	results.Details[index].Resolved = !results.Details[index].Resolved
}

// formatFailureDetails formats a test failure for display using tview color tags
func formatFailureDetails(failure domain.TestFailure) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "[red]✗ %s: %s[white]\n\n", failure.Status, tview.Escape(failure.FullName))
	fmt.Fprintf(w, "[cyan]Fixture: %s[white]\n", tview.Escape(failure.Fixture))
	fmt.Fprintf(w, "[cyan]Site: %s[white]\n", failure.Site)
	if failure.File != "" && failure.Line > 0 {
		fmt.Fprintf(w, "[yellow]Location: %s:%d[white]\n", failure.File, failure.Line)
	}
	fmt.Fprintf(w, "\n")

	if failure.Message != "" {
		fmt.Fprintf(w, "[yellow]Message:[white]\n%s\n\n", tview.Escape(failure.Message))
	}
	if failure.ErrorDetails != "" {
		fmt.Fprintf(w, "[yellow]Output:[white]\n%s\n\n", tview.Escape(failure.ErrorDetails))
	}
	if len(failure.StackTrace) > 0 {
		fmt.Fprintf(w, "[yellow]Stack Trace:[white]\n")
		for i, trace := range failure.StackTrace {
			if i < 20 {
				fmt.Fprintf(w, "  %s\n", tview.Escape(trace))
			}
		}
		if len(failure.StackTrace) > 20 {
			fmt.Fprintf(w, "  [gray]... and %d more lines[white]\n", len(failure.StackTrace)-20)
		}
	}

	w.Flush()
	return builder.String()
}

// formatFailurePlain renders a failure without color tags for the clipboard
func formatFailurePlain(failure domain.TestFailure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", failure.Status, failure.FullName)
	if failure.File != "" && failure.Line > 0 {
		fmt.Fprintf(&b, "%s:%d\n", failure.File, failure.Line)
	}
	if failure.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", failure.Message)
	}
	if len(failure.StackTrace) > 0 {
		fmt.Fprintf(&b, "\n%s\n", strings.Join(failure.StackTrace, "\n"))
	}
	return b.String()
}

// formatFailureStats formats the stats header for a test failure
func formatFailureStats(failure domain.TestFailure, number int) string {
	fixture := failure.Fixture
	if fixture == "" {
		fixture = "Unknown fixture"
	}
	name := failure.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", number)
	}
	return fmt.Sprintf("[cyan]fixture:[white] [yellow]%s[white] :: [yellow]%s[white]\n",
		tview.Escape(fixture), tview.Escape(name))
}
