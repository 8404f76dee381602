package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"mdit/internal/history"
	"mdit/internal/organizer"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

func statusLabel(status organizer.Status) string {
	switch status {
	case organizer.StatusFailed:
		return failedStyle.Render(string(status))
	case organizer.StatusUnchanged:
		return mutedStyle.Render(string(status))
	default:
		return successStyle.Render(string(status))
	}
}

func renderMoveResult(w io.Writer, res *organizer.OrganizeResult) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf(
		"moved %d, unchanged %d, failed %d", res.MovedCount, res.UnchangedCount, res.FailedCount)))
	for _, op := range res.Operations {
		line := fmt.Sprintf("  %s  %s", statusLabel(op.Status), op.Path)
		switch {
		case op.Status == organizer.StatusMoved && op.NewPath != "":
			line += mutedStyle.Render("  -> " + op.NewPath)
		case op.Status == organizer.StatusMoved:
			line += mutedStyle.Render("  -> " + op.DestinationDirPath)
		case op.Status == organizer.StatusFailed:
			line += mutedStyle.Render("  (" + op.Reason + ")")
		}
		fmt.Fprintln(w, line)
	}
}

func renderRenameResult(w io.Writer, res *organizer.RenameResult) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf(
		"renamed %d, unchanged %d, failed %d in %s",
		res.RenamedCount, res.UnchangedCount, res.FailedCount, res.DirPath)))
	for _, op := range res.Operations {
		line := fmt.Sprintf("  %s  %s", statusLabel(op.Status), op.Path)
		switch op.Status {
		case organizer.StatusRenamed:
			line += mutedStyle.Render("  -> " + op.FinalFileName)
		case organizer.StatusFailed:
			line += mutedStyle.Render("  (" + op.Reason + ")")
		}
		fmt.Fprintln(w, line)
	}
}

func renderHistory(w io.Writer, runs []history.Record) {
	if len(runs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no recorded runs"))
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-6s  %s  %s\n",
			mutedStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
			r.Kind,
			fmt.Sprintf("ok %d / same %d / %s", r.Succeeded, r.Unchanged,
				failedStyle.Render(fmt.Sprintf("failed %d", r.Failed))),
			r.DirPath)
	}
}
