package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mdit/internal/agent"
	"mdit/internal/tools"
	"mdit/internal/vault"
)

// LoopDriver runs the tool-calling session. The organizer never trusts the
// driver's stop decision; completion is re-verified against the ledger.
type LoopDriver interface {
	Run(ctx context.Context, req agent.RunRequest) ([]agent.Step, error)
}

// Organizer runs move and rename batches. Each batch builds its own ledger
// and tool surface, so concurrent batches on disjoint paths are safe;
// batches overlapping the same path must be serialized by the caller.
type Organizer struct {
	fs     vault.FS
	driver LoopDriver
	log    *slog.Logger
}

func New(fs vault.FS, driver LoopDriver, log *slog.Logger) *Organizer {
	if log == nil {
		log = slog.Default()
	}
	return &Organizer{fs: fs, driver: driver, log: log}
}

// OrganizeResult is the public outcome of a move batch. Operations are in
// original target order, independent of the order the model processed them.
type OrganizeResult struct {
	MovedCount     int                   `json:"movedCount"`
	UnchangedCount int                   `json:"unchangedCount"`
	FailedCount    int                   `json:"failedCount"`
	Operations     []PublicMoveOperation `json:"operations"`
}

// OrganizeNotes moves a batch of notes into the workspace's directories.
// Returns (nil, nil) when nothing is eligible. A batch that does not reach a
// verified finish is an error: this variant propagates non-completion to the
// caller instead of fabricating a result.
func (o *Organizer) OrganizeNotes(ctx context.Context, workspaceRoot string, entries []vault.Entry) (*OrganizeResult, error) {
	targets := CollectTargets(entries)
	if len(targets) == 0 {
		return nil, nil
	}

	b, err := newMoveBatch(ctx, o.fs, workspaceRoot, targets)
	if err != nil {
		return nil, err
	}
	registry := tools.NewRegistry(
		&listTargetsTool{targets: targets},
		&listDirectoriesTool{batch: b},
		newReadNoteTool(o.fs, targets),
		&moveNoteTool{batch: b},
		&finishOrganizationTool{batch: b},
	)

	o.log.Info("move batch start", "targets", len(targets), "candidate_dirs", len(b.candidateDirs))
	steps, err := o.driver.Run(ctx, agent.RunRequest{
		SystemPrompt: moveSystemPrompt,
		UserPrompt:   BuildMovePrompt(targets, b.candidateDirs),
		Registry:     registry,
		FinishTool:   "finish_organization",
	})
	if err != nil {
		return nil, fmt.Errorf("move batch: %w", err)
	}
	if !agent.FinishSucceeded(steps, "finish_organization") {
		return nil, errors.New("agent finished without successful finish_organization")
	}

	result := &OrganizeResult{Operations: make([]PublicMoveOperation, 0, len(targets))}
	for _, t := range targets {
		op, ok := b.ops[t.Path]
		if !ok {
			return nil, fmt.Errorf("missing operation for target %s", t.Path)
		}
		pub, err := op.toPublic()
		if err != nil {
			return nil, fmt.Errorf("move batch reported success: %w", err)
		}
		result.Operations = append(result.Operations, pub)
	}
	counts := countMoveStatuses(b.ops)
	result.MovedCount = counts.Moved
	result.UnchangedCount = counts.Unchanged
	result.FailedCount = counts.Failed
	o.log.Info("move batch done",
		"moved", counts.Moved, "unchanged", counts.Unchanged, "failed", counts.Failed)
	return result, nil
}
