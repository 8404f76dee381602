package organizer

import (
	"context"
	"encoding/json"
	"fmt"

	"mdit/internal/chat"
	"mdit/internal/vault"
)

// listDirectoriesTool exposes the precomputed candidate directory set.
// Read-only.
type listDirectoriesTool struct {
	batch *moveBatch
}

func (t *listDirectoriesTool) Name() string { return "list_directories" }

func (t *listDirectoriesTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "List the candidate directories notes may be moved into.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func (t *listDirectoriesTool) Execute(_ context.Context, _ json.RawMessage) (string, error) {
	return mustJSON(t.batch.candidateDirs), nil
}

// moveNoteTool moves one target note into a candidate directory. It is the
// only mutating tool of the move surface.
type moveNoteTool struct {
	batch *moveBatch
}

func (t *moveNoteTool) Name() string { return "move_note" }

func (t *moveNoteTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Move one target note into one of the candidate directories. Each note can be processed once.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sourcePath": map[string]any{
						"type":        "string",
						"description": "Path of the target note to move.",
					},
					"destinationDirPath": map[string]any{
						"type":        "string",
						"description": "One of the candidate directories.",
					},
				},
				"required": []string{"sourcePath", "destinationDirPath"},
			},
		},
	}
}

func (t *moveNoteTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		SourcePath         string `json:"sourcePath"`
		DestinationDirPath string `json:"destinationDirPath"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("move_note args: %w", err)
	}

	b := t.batch
	op, ok := b.ops[in.SourcePath]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotATarget, in.SourcePath)
	}
	if !b.candidateSet[in.DestinationDirPath] {
		return "", fmt.Errorf("%w: %s is not in the candidate directories", ErrNotACandidateDirectory, in.DestinationDirPath)
	}
	if op.Status != StatusPending {
		return "", fmt.Errorf("%w: %s is already %s", ErrAlreadyProcessed, in.SourcePath, op.Status)
	}

	if in.DestinationDirPath == op.CurrentDirPath {
		op.Status = StatusUnchanged
		op.DestinationDirPath = in.DestinationDirPath
		return publicMoveJSON(op)
	}

	res, err := b.fs.MoveEntry(ctx, in.SourcePath, in.DestinationDirPath, vault.MoveOptions{
		OnConflict:        vault.ConflictAutoRename,
		AllowLockedSource: true,
	})
	if err != nil || !res.Moved {
		op.Status = StatusFailed
		if err != nil {
			op.Reason = err.Error()
		} else {
			op.Reason = "filesystem refused to move the note"
		}
		return publicMoveJSON(op)
	}
	op.Status = StatusMoved
	op.DestinationDirPath = in.DestinationDirPath
	op.NewPath = res.FinalPath
	return publicMoveJSON(op)
}

func publicMoveJSON(op *MoveOperation) (string, error) {
	pub, err := op.toPublic()
	if err != nil {
		return "", err
	}
	return mustJSON(pub), nil
}

// finishOrganizationTool reports whether every target reached a terminal
// state. Read-only and safe to call repeatedly; its success result is the
// loop's stop signal.
type finishOrganizationTool struct {
	batch *moveBatch
}

func (t *finishOrganizationTool) Name() string { return "finish_organization" }

func (t *finishOrganizationTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Call after every target note has been handled. Reports paths still waiting.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

type finishResult struct {
	Success      bool     `json:"success"`
	PendingPaths []string `json:"pendingPaths"`
}

func (t *finishOrganizationTool) Execute(_ context.Context, _ json.RawMessage) (string, error) {
	pending := t.batch.pendingPaths()
	return mustJSON(finishResult{
		Success:      len(pending) == 0,
		PendingPaths: pending,
	}), nil
}
