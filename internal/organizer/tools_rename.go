package organizer

import (
	"context"
	"encoding/json"
	"fmt"

	"mdit/internal/chat"
)

// listSiblingNotesTool exposes the filenames already present in the batch
// directory. Read-only.
type listSiblingNotesTool struct {
	batch *renameBatch
}

func (t *listSiblingNotesTool) Name() string { return "list_sibling_notes" }

func (t *listSiblingNotesTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "List filenames already present in the directory. These names are taken.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func (t *listSiblingNotesTool) Execute(_ context.Context, _ json.RawMessage) (string, error) {
	return mustJSON(t.batch.siblingNames), nil
}

// setTitleTool stores a raw title proposal for one target. Sanitization and
// collision handling are deferred to finalization, because later proposals
// can still change the set of known names.
type setTitleTool struct {
	batch *renameBatch
}

func (t *setTitleTool) Name() string { return "set_title" }

func (t *setTitleTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Propose a title for one target note. The title becomes the new filename.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Path of a target note.",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Proposed title, without a file extension.",
					},
				},
				"required": []string{"path", "title"},
			},
		},
	}
}

func (t *setTitleTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path  string `json:"path"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("set_title args: %w", err)
	}

	b := t.batch
	if b.finalized {
		return "", fmt.Errorf("%w: set_title after finish_rename", ErrAlreadyFinalized)
	}
	if _, ok := b.ops[in.Path]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotATarget, in.Path)
	}
	b.proposals[in.Path] = in.Title
	return mustJSON(map[string]any{"recorded": true, "path": in.Path}), nil
}

// finishRenameTool finalizes the batch once every target has a proposal.
// Finalization runs the conflict resolver exactly once; calling the tool
// again afterwards reports success without re-resolving.
type finishRenameTool struct {
	batch *renameBatch
}

func (t *finishRenameTool) Name() string { return "finish_rename" }

func (t *finishRenameTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Call after proposing a title for every target note. Reports paths still waiting.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func (t *finishRenameTool) Execute(ctx context.Context, _ json.RawMessage) (string, error) {
	b := t.batch
	if b.finalized {
		return mustJSON(finishResult{Success: true, PendingPaths: []string{}}), nil
	}
	pending := b.pendingPaths()
	if len(pending) > 0 {
		return mustJSON(finishResult{Success: false, PendingPaths: pending}), nil
	}
	if err := finalizeRenames(ctx, b); err != nil {
		return "", err
	}
	b.finalized = true
	return mustJSON(finishResult{Success: true, PendingPaths: []string{}}), nil
}
