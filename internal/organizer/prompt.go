package organizer

import (
	"fmt"
	"strings"

	"mdit/internal/vault"
)

// moveSystemPrompt frames the move session. Tool behavior described here must
// match the actual tool surface.
const moveSystemPrompt = `You are a note organization assistant.

You are given a batch of target notes and a fixed list of candidate directories.
Decide, for each target note, which candidate directory fits its content best.

RULES
- Work only on the listed target notes and only with the listed candidate directories.
- Use read_note to inspect a note before deciding where it belongs.
- Move each note exactly once with move_note. If a note is already in the right
  directory, still call move_note with its current directory.
- When every note has been handled, call finish_organization. If it reports
  pending paths, handle them and call it again.`

const renameSystemPrompt = `You are a note naming assistant.

You are given a batch of target notes inside one directory. Propose a concise,
descriptive title for each note based on its content.

RULES
- Work only on the listed target notes.
- Use read_note to inspect a note before proposing its title.
- Propose exactly one title per note with set_title. Titles must not include a
  file extension.
- When every note has a title, call finish_rename. If it reports pending paths,
  propose titles for them and call it again.`

// BuildMovePrompt renders the user-facing task description for a move batch.
// Pure; the 1-indexed ordering and the truncation figure are part of the
// contract with the tool surface.
func BuildMovePrompt(targets []vault.Entry, candidateDirs []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Organize the following %d note(s) into the most fitting directories.\n\n", len(targets))
	sb.WriteString("Target notes:\n")
	for i, t := range targets {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t.Path)
	}
	sb.WriteString("\nCandidate directories:\n")
	for i, d := range candidateDirs {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, d)
	}
	fmt.Fprintf(&sb, "\nread_note returns at most %d characters of a note.\n", readNoteCharBudget)
	sb.WriteString("Call finish_organization once every note has been moved.")
	return sb.String()
}

// BuildRenamePrompt renders the user-facing task description for a rename
// batch.
func BuildRenamePrompt(targets []vault.Entry, siblingNames []string, dirPath string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Suggest titles for the following %d note(s) in %s.\n\n", len(targets), dirPath)
	sb.WriteString("Target notes:\n")
	for i, t := range targets {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t.Path)
	}
	if len(siblingNames) > 0 {
		sb.WriteString("\nFilenames already in the directory:\n")
		for i, name := range siblingNames {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, name)
		}
	}
	fmt.Fprintf(&sb, "\nread_note returns at most %d characters of a note.\n", readNoteCharBudget)
	sb.WriteString("Call finish_rename once every note has a proposed title.")
	return sb.String()
}
