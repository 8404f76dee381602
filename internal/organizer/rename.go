package organizer

import (
	"context"
	"fmt"

	"mdit/internal/agent"
	"mdit/internal/tools"
	"mdit/internal/vault"
)

// RenameResult is the public outcome of a rename batch. Operations are in
// original target order.
type RenameResult struct {
	RenamedCount   int                     `json:"renamedCount"`
	UnchangedCount int                     `json:"unchangedCount"`
	FailedCount    int                     `json:"failedCount"`
	DirPath        string                  `json:"dirPath"`
	Operations     []PublicRenameOperation `json:"operations"`
}

// SuggestRenames proposes collision-free filenames for a batch of notes in
// one directory. Returns (nil, nil) when nothing is eligible. Unlike the
// move variant, batch-level non-completion never surfaces as an error:
// the caller always receives a result, with every target marked failed.
func (o *Organizer) SuggestRenames(ctx context.Context, dirPath string, entries []vault.Entry) (*RenameResult, error) {
	targets := CollectTargets(entries)
	if len(targets) == 0 {
		return nil, nil
	}

	b, err := newRenameBatch(ctx, o.fs, dirPath, targets)
	if err != nil {
		return nil, err
	}
	registry := tools.NewRegistry(
		&listTargetsTool{targets: targets},
		&listSiblingNotesTool{batch: b},
		newReadNoteTool(o.fs, targets),
		&setTitleTool{batch: b},
		&finishRenameTool{batch: b},
	)

	o.log.Info("rename batch start", "dir", dirPath, "targets", len(targets))
	steps, err := o.driver.Run(ctx, agent.RunRequest{
		SystemPrompt: renameSystemPrompt,
		UserPrompt:   BuildRenamePrompt(targets, b.siblingNames, dirPath),
		Registry:     registry,
		FinishTool:   "finish_rename",
	})
	switch {
	case err != nil:
		o.log.Warn("rename batch aborted", "err", err)
		failAllRenames(b, fmt.Sprintf("agent run failed: %v", err))
	case !agent.FinishSucceeded(steps, "finish_rename"):
		failAllRenames(b, "agent finished without successful finish_rename")
	}

	result := &RenameResult{
		DirPath:    dirPath,
		Operations: make([]PublicRenameOperation, 0, len(targets)),
	}
	for _, t := range targets {
		op, ok := b.ops[t.Path]
		if !ok {
			return nil, fmt.Errorf("missing operation for target %s", t.Path)
		}
		pub, err := op.toPublic()
		if err != nil {
			return nil, fmt.Errorf("rename batch reported success: %w", err)
		}
		result.Operations = append(result.Operations, pub)
	}
	counts := countRenameStatuses(b.ops)
	result.RenamedCount = counts.Renamed
	result.UnchangedCount = counts.Unchanged
	result.FailedCount = counts.Failed
	o.log.Info("rename batch done",
		"renamed", counts.Renamed, "unchanged", counts.Unchanged, "failed", counts.Failed)
	return result, nil
}

// failAllRenames converts batch-level non-completion into per-target
// failures so the caller still gets a complete result.
func failAllRenames(b *renameBatch, reason string) {
	for _, op := range b.ops {
		op.Status = StatusFailed
		op.Reason = reason
		op.SuggestedBaseName = ""
		op.FinalFileName = ""
	}
}
