package organizer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// finalizeRenames assigns collision-free final filenames to every target, in
// target order. Target order is the tie-break: when two targets propose the
// same title, the earlier target keeps the unsuffixed name regardless of
// which proposal arrived first.
func finalizeRenames(ctx context.Context, b *renameBatch) error {
	occupied := make(map[string]bool, len(b.siblingNames))
	for _, name := range b.siblingNames {
		occupied[strings.ToLower(name)] = true
	}

	// Targets proposing the same title all fan out to numbered names, in
	// target order, so the outcome is identical no matter which proposal the
	// model stored first.
	baseCount := make(map[string]int, len(b.targets))
	for _, t := range b.targets {
		if proposal, ok := b.proposals[t.Path]; ok {
			if base := sanitizeTitle(proposal); base != "" {
				baseCount[strings.ToLower(base)]++
			}
		}
	}

	for _, t := range b.targets {
		op := b.ops[t.Path]
		currentName := filepath.Base(t.Path)
		// A note is never blocked by its own current name.
		delete(occupied, strings.ToLower(currentName))

		proposal, ok := b.proposals[t.Path]
		if !ok {
			op.Status = StatusFailed
			op.Reason = "no suggestion"
			continue
		}
		base := sanitizeTitle(proposal)
		if base == "" {
			op.Status = StatusFailed
			op.Reason = "invalid title"
			continue
		}
		op.SuggestedBaseName = base

		contested := baseCount[strings.ToLower(base)] > 1
		final, err := b.probeFilename(ctx, base, currentName, contested, occupied)
		if err != nil {
			return err
		}
		if final == "" {
			op.Status = StatusFailed
			op.Reason = "no available filename"
			continue
		}
		// Claim the name immediately so the next target in order sees it.
		occupied[strings.ToLower(final)] = true
		op.FinalFileName = final
		if strings.EqualFold(final, currentName) {
			op.Status = StatusUnchanged
		} else {
			op.Status = StatusRenamed
		}
	}
	return nil
}

// probeFilename tries "base.md", "base 1.md", "base 2.md", ... and returns
// the first candidate that is the target's own current name, or is neither
// occupied nor present on disk. When the base is contested by several
// targets the unsuffixed candidate is skipped so every contender gets a
// numbered name. Returns "" when all attempts are taken.
func (b *renameBatch) probeFilename(ctx context.Context, base, currentName string, contested bool, occupied map[string]bool) (string, error) {
	for i := 0; i < maxSuffixAttempts; i++ {
		candidate := base + ".md"
		if i > 0 {
			candidate = fmt.Sprintf("%s %d.md", base, i)
		}
		if strings.EqualFold(candidate, currentName) {
			return candidate, nil
		}
		if i == 0 && contested {
			continue
		}
		if occupied[strings.ToLower(candidate)] {
			continue
		}
		onDisk, err := b.fs.Exists(ctx, filepath.Join(b.dirPath, candidate))
		if err != nil {
			return "", fmt.Errorf("probe %s: %w", candidate, err)
		}
		if !onDisk {
			return candidate, nil
		}
	}
	return "", nil
}

// sanitizeTitle turns a raw model proposal into a usable filename base:
// first line only, quote/bracket characters removed, filesystem-illegal
// characters removed, whitespace collapsed, trailing dots trimmed, clamped
// to 60 characters. Returns "" when nothing usable remains.
func sanitizeTitle(title string) string {
	line := title
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	line = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '`', '“', '”', '‘', '’',
			'[', ']', '(', ')', '{', '}',
			'/', '\\', ':', '*', '?', '<', '>', '|':
			return -1
		}
		return r
	}, line)
	line = strings.Join(strings.Fields(line), " ")
	line = strings.TrimRight(line, ".")
	runes := []rune(line)
	if len(runes) > maxSanitizedBaseLen {
		line = strings.TrimSpace(string(runes[:maxSanitizedBaseLen]))
		line = strings.TrimRight(line, ".")
	}
	return line
}
