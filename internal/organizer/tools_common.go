package organizer

import (
	"context"
	"encoding/json"
	"fmt"

	"mdit/internal/chat"
	"mdit/internal/vault"
)

// readNoteCharBudget bounds how much note content one read_note call feeds
// back into the prompt. The prompt builder quotes the same figure, so the two
// must stay in sync.
const (
	readNoteCharBudget  = 4000
	truncationMarker    = "\n..."
	maxSuffixAttempts   = 100
	maxSanitizedBaseLen = 60
)

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"ok":false,"error":"marshal result: %s"}`, err.Error())
	}
	return string(data)
}

type targetView struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// listTargetsTool exposes the eligible note set. Read-only.
type listTargetsTool struct {
	targets []vault.Entry
}

func (t *listTargetsTool) Name() string { return "list_targets" }

func (t *listTargetsTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "List the notes in this batch. Only these notes may be processed.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func (t *listTargetsTool) Execute(_ context.Context, _ json.RawMessage) (string, error) {
	views := make([]targetView, 0, len(t.targets))
	for _, e := range t.targets {
		views = append(views, targetView{Path: e.Path, Name: e.Name})
	}
	return mustJSON(views), nil
}

// readNoteTool reads a target note's content, truncated to the character
// budget with an explicit marker.
type readNoteTool struct {
	fs        vault.FS
	targetSet map[string]bool
}

func newReadNoteTool(fs vault.FS, targets []vault.Entry) *readNoteTool {
	set := make(map[string]bool, len(targets))
	for _, t := range targets {
		set[t.Path] = true
	}
	return &readNoteTool{fs: fs, targetSet: set}
}

func (t *readNoteTool) Name() string { return "read_note" }

func (t *readNoteTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: fmt.Sprintf("Read the content of one target note. Output is truncated to %d characters.", readNoteCharBudget),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Path of a target note.",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

func (t *readNoteTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("read_note args: %w", err)
	}
	if !t.targetSet[in.Path] {
		return "", fmt.Errorf("%w: %s", ErrNotATarget, in.Path)
	}
	content, err := t.fs.ReadTextFile(ctx, in.Path)
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	return truncateContent(content, readNoteCharBudget), nil
}

func truncateContent(content string, budget int) string {
	runes := []rune(content)
	if len(runes) <= budget {
		return content
	}
	return string(runes[:budget]) + truncationMarker
}
