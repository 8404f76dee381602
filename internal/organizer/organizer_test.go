package organizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mdit/internal/agent"
	"mdit/internal/chat"
	"mdit/internal/provider"
	"mdit/internal/vault"
)

// scriptedProvider replays canned responses, then idles without tool calls.
type scriptedProvider struct {
	responses []provider.ChatResponse
	next      int
}

func (p *scriptedProvider) Chat(_ context.Context, _ provider.ChatRequest) (provider.ChatResponse, error) {
	if p.next >= len(p.responses) {
		return provider.ChatResponse{Content: "nothing left to do"}, nil
	}
	resp := p.responses[p.next]
	p.next++
	return resp, nil
}

func (p *scriptedProvider) Name() string         { return "scripted" }
func (p *scriptedProvider) CurrentModel() string { return "test-model" }

func toolCall(id, name string, args any) chat.ToolCall {
	raw, err := json.Marshal(args)
	if err != nil {
		panic(err)
	}
	return chat.ToolCall{
		ID:   id,
		Type: "function",
		Function: chat.ToolCallFunction{
			Name:      name,
			Arguments: string(raw),
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newScriptedOrganizer(maxSteps int, responses ...provider.ChatResponse) *Organizer {
	driver := agent.NewDriver(&scriptedProvider{responses: responses}, agent.Config{
		MaxSteps: maxSteps,
		Logger:   quietLogger(),
	})
	return New(vault.NewOSFS(), driver, quietLogger())
}

func setupWorkspace(t *testing.T) (root, inbox, projects string, entries []vault.Entry) {
	t.Helper()
	root = t.TempDir()
	inbox = filepath.Join(root, "inbox")
	projects = filepath.Join(root, "projects")
	for _, d := range []string{inbox, projects} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	plan := writeNote(t, inbox, "plan.md", "project planning for Q3")
	todo := writeNote(t, inbox, "todo.md", "errands")
	entries = []vault.Entry{
		{Path: plan, Name: "plan.md"},
		{Path: todo, Name: "todo.md"},
	}
	return root, inbox, projects, entries
}

func TestOrganizeNotesEndToEnd(t *testing.T) {
	root, inbox, projects, entries := setupWorkspace(t)
	org := newScriptedOrganizer(0, provider.ChatResponse{
		ToolCalls: []chat.ToolCall{
			toolCall("1", "move_note", map[string]string{
				"sourcePath": entries[0].Path, "destinationDirPath": projects,
			}),
			toolCall("2", "move_note", map[string]string{
				"sourcePath": entries[1].Path, "destinationDirPath": inbox,
			}),
			toolCall("3", "finish_organization", map[string]any{}),
		},
	})

	res, err := org.OrganizeNotes(context.Background(), root, entries)
	if err != nil {
		t.Fatal(err)
	}
	if res.MovedCount != 1 || res.UnchangedCount != 1 || res.FailedCount != 0 {
		t.Fatalf("counts=%+v", res)
	}
	if len(res.Operations) != 2 {
		t.Fatalf("operations=%d", len(res.Operations))
	}
	first := res.Operations[0]
	if first.Path != entries[0].Path || first.Status != StatusMoved || first.DestinationDirPath != projects {
		t.Fatalf("first=%+v", first)
	}
	second := res.Operations[1]
	if second.Path != entries[1].Path || second.Status != StatusUnchanged || second.DestinationDirPath != inbox {
		t.Fatalf("second=%+v", second)
	}
	if _, err := os.Stat(filepath.Join(projects, "plan.md")); err != nil {
		t.Fatalf("plan.md not moved: %v", err)
	}
}

func TestOrganizeNotesResultKeepsTargetOrder(t *testing.T) {
	root, inbox, projects, entries := setupWorkspace(t)
	// Process targets in reverse call order; result order must not change.
	org := newScriptedOrganizer(0, provider.ChatResponse{
		ToolCalls: []chat.ToolCall{
			toolCall("1", "move_note", map[string]string{
				"sourcePath": entries[1].Path, "destinationDirPath": inbox,
			}),
			toolCall("2", "move_note", map[string]string{
				"sourcePath": entries[0].Path, "destinationDirPath": projects,
			}),
			toolCall("3", "finish_organization", map[string]any{}),
		},
	})

	res, err := org.OrganizeNotes(context.Background(), root, entries)
	if err != nil {
		t.Fatal(err)
	}
	if res.Operations[0].Path != entries[0].Path || res.Operations[1].Path != entries[1].Path {
		t.Fatalf("operations out of target order: %+v", res.Operations)
	}
}

func TestOrganizeNotesAbortsOnBadDestination(t *testing.T) {
	root, _, _, entries := setupWorkspace(t)
	org := newScriptedOrganizer(0, provider.ChatResponse{
		ToolCalls: []chat.ToolCall{
			toolCall("1", "move_note", map[string]string{
				"sourcePath": entries[0].Path, "destinationDirPath": "/definitely/not/allowed",
			}),
		},
	})

	res, err := org.OrganizeNotes(context.Background(), root, entries)
	if err == nil {
		t.Fatal("expected error")
	}
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	if !strings.Contains(err.Error(), "candidate directories") {
		t.Fatalf("err=%v, want mention of candidate directories", err)
	}
}

func TestOrganizeNotesThrowsWhenAgentNeverFinishes(t *testing.T) {
	root, _, _, entries := setupWorkspace(t)
	org := newScriptedOrganizer(2)

	res, err := org.OrganizeNotes(context.Background(), root, entries)
	if err == nil {
		t.Fatal("expected error")
	}
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	if !strings.Contains(err.Error(), "finish_organization") {
		t.Fatalf("err=%v", err)
	}
}

func TestOrganizeNotesNothingEligible(t *testing.T) {
	org := newScriptedOrganizer(0)
	res, err := org.OrganizeNotes(context.Background(), t.TempDir(), []vault.Entry{
		{Path: "/ws/pic.png", Name: "pic.png"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
}

func setupRenameDir(t *testing.T, names ...string) (string, []vault.Entry) {
	t.Helper()
	dir := t.TempDir()
	entries := make([]vault.Entry, 0, len(names))
	for _, name := range names {
		path := writeNote(t, dir, name, "content of "+name)
		entries = append(entries, vault.Entry{Path: path, Name: name})
	}
	return dir, entries
}

func TestSuggestRenamesEndToEndWithInvalidTitle(t *testing.T) {
	dir, entries := setupRenameDir(t, "a.md", "b.md", "c.md")
	org := newScriptedOrganizer(0, provider.ChatResponse{
		ToolCalls: []chat.ToolCall{
			toolCall("1", "set_title", map[string]string{"path": entries[0].Path, "title": "Alpha Report"}),
			toolCall("2", "set_title", map[string]string{"path": entries[1].Path, "title": `/\:*?"<>|`}),
			toolCall("3", "set_title", map[string]string{"path": entries[2].Path, "title": "c"}),
			toolCall("4", "finish_rename", map[string]any{}),
		},
	})

	res, err := org.SuggestRenames(context.Background(), dir, entries)
	if err != nil {
		t.Fatal(err)
	}
	if res.FailedCount != 1 || res.RenamedCount != 1 || res.UnchangedCount != 1 {
		t.Fatalf("counts=%+v", res)
	}
	if res.DirPath != dir {
		t.Fatalf("dirPath=%s", res.DirPath)
	}
	a, b, c := res.Operations[0], res.Operations[1], res.Operations[2]
	if a.Status != StatusRenamed || a.FinalFileName != "Alpha Report.md" {
		t.Fatalf("a=%+v", a)
	}
	if b.Status != StatusFailed || b.Reason != "invalid title" {
		t.Fatalf("b=%+v", b)
	}
	if c.Status != StatusUnchanged || c.FinalFileName != "c.md" {
		t.Fatalf("c=%+v", c)
	}
}

func TestSuggestRenamesRetryAfterIncompleteFinish(t *testing.T) {
	dir, entries := setupRenameDir(t, "a.md", "b.md")
	org := newScriptedOrganizer(0,
		provider.ChatResponse{
			ToolCalls: []chat.ToolCall{
				toolCall("1", "set_title", map[string]string{"path": entries[0].Path, "title": "Alpha"}),
				toolCall("2", "finish_rename", map[string]any{}),
			},
		},
		provider.ChatResponse{
			ToolCalls: []chat.ToolCall{
				toolCall("3", "set_title", map[string]string{"path": entries[1].Path, "title": "Beta"}),
				toolCall("4", "finish_rename", map[string]any{}),
			},
		},
	)

	res, err := org.SuggestRenames(context.Background(), dir, entries)
	if err != nil {
		t.Fatal(err)
	}
	if res.RenamedCount != 2 || res.FailedCount != 0 {
		t.Fatalf("counts=%+v", res)
	}
}

func TestSuggestRenamesIncompleteBatchReturnsFullyFailedResult(t *testing.T) {
	dir, entries := setupRenameDir(t, "a.md", "b.md")
	org := newScriptedOrganizer(2)

	res, err := org.SuggestRenames(context.Background(), dir, entries)
	if err != nil {
		t.Fatalf("rename variant must not error on non-completion: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.FailedCount != len(entries) {
		t.Fatalf("failedCount=%d want %d", res.FailedCount, len(entries))
	}
	for _, op := range res.Operations {
		if op.Status != StatusFailed {
			t.Fatalf("op=%+v want failed", op)
		}
		if !strings.Contains(op.Reason, "finish_rename") {
			t.Fatalf("reason=%q should mention finish_rename", op.Reason)
		}
	}
}

func TestSuggestRenamesToolErrorAlsoYieldsFailedResult(t *testing.T) {
	dir, entries := setupRenameDir(t, "a.md")
	org := newScriptedOrganizer(0, provider.ChatResponse{
		ToolCalls: []chat.ToolCall{
			toolCall("1", "set_title", map[string]string{"path": "/not/a/target.md", "title": "X"}),
		},
	})

	res, err := org.SuggestRenames(context.Background(), dir, entries)
	if err != nil {
		t.Fatalf("rename variant must not error: %v", err)
	}
	if res.FailedCount != 1 {
		t.Fatalf("res=%+v", res)
	}
	if !strings.Contains(res.Operations[0].Reason, "agent run failed") {
		t.Fatalf("reason=%q", res.Operations[0].Reason)
	}
}

func TestSuggestRenamesNothingEligible(t *testing.T) {
	org := newScriptedOrganizer(0)
	res, err := org.SuggestRenames(context.Background(), t.TempDir(), nil)
	if err != nil || res != nil {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestBuildMovePromptContents(t *testing.T) {
	targets := []vault.Entry{
		{Path: "/ws/inbox/plan.md", Name: "plan.md"},
		{Path: "/ws/inbox/todo.md", Name: "todo.md"},
	}
	prompt := BuildMovePrompt(targets, []string{"/ws", "/ws/projects"})
	for _, want := range []string{
		"1. /ws/inbox/plan.md",
		"2. /ws/inbox/todo.md",
		"1. /ws",
		"2. /ws/projects",
		fmt.Sprintf("%d characters", readNoteCharBudget),
		"finish_organization",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildRenamePromptContents(t *testing.T) {
	targets := []vault.Entry{{Path: "/ws/notes/a.md", Name: "a.md"}}
	prompt := BuildRenamePrompt(targets, []string{"keep.md"}, "/ws/notes")
	for _, want := range []string{
		"1. /ws/notes/a.md",
		"1. keep.md",
		fmt.Sprintf("%d characters", readNoteCharBudget),
		"finish_rename",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
