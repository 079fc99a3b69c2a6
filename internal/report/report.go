// Package report renders the end-of-sweep summary for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"proofline/internal/orchestrator"
	"proofline/internal/task"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	reviewStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Render formats one sweep's outcomes as a table. The run identifier heads
// the block so operators can match it against the logs.
func Render(runID string, outcomes []orchestrator.Outcome) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("sweep "+runID) + "\n")
	if len(outcomes) == 0 {
		b.WriteString(dimStyle.Render("no due tasks") + "\n")
		return b.String()
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("%-14s %-32s %6s  %s", "STATUS", "TASK", "CONF", "PROOF")) + "\n")
	for _, out := range outcomes {
		status := styleFor(out.Status).Render(fmt.Sprintf("%-14s", out.Status))
		title := out.Task.Title
		if len(title) > 32 {
			title = title[:29] + "..."
		}
		proof := out.ProofURL
		if proof == "" {
			proof = "-"
		}
		b.WriteString(fmt.Sprintf("%s %-32s %6.2f  %s\n", status, title, out.Confidence, proof))
	}
	return b.String()
}

func styleFor(status task.Status) lipgloss.Style {
	switch status {
	case task.StatusDone:
		return doneStyle
	case task.StatusBlocked:
		return blockedStyle
	case task.StatusNeedsReview:
		return reviewStyle
	default:
		return dimStyle
	}
}
