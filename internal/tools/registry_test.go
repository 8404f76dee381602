package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"mdit/internal/chat"
)

type staticTool struct {
	name string
	out  string
}

func (t staticTool) Name() string { return t.name }

func (t staticTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type:     "function",
		Function: chat.ToolFunction{Name: t.name},
	}
}

func (t staticTool) Execute(_ context.Context, _ json.RawMessage) (string, error) {
	return t.out, nil
}

func TestRegistryDefinitionsKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry(
		staticTool{name: "list_targets"},
		staticTool{name: "read_note"},
		staticTool{name: "move_note"},
	)

	defs := r.Definitions()
	want := []string{"list_targets", "read_note", "move_note"}
	if len(defs) != len(want) {
		t.Fatalf("defs=%d want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Function.Name != name {
			t.Fatalf("defs[%d]=%q want %q", i, defs[i].Function.Name, name)
		}
	}
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry(staticTool{name: "read_note", out: `{"content":"x"}`})

	out, err := r.Execute(context.Background(), "read_note", json.RawMessage(`{}`))
	if err != nil || out != `{"content":"x"}` {
		t.Fatalf("out=%q err=%v", out, err)
	}

	_, err = r.Execute(context.Background(), "nope", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Fatalf("err=%v", err)
	}
}

func TestRegistryHasAndNames(t *testing.T) {
	r := NewRegistry(staticTool{name: "b"}, staticTool{name: "a"})

	if !r.Has("a") || r.Has("c") {
		t.Fatal("membership wrong")
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("names=%v", names)
	}
}

func TestRegistryDuplicateRegistrationLastWins(t *testing.T) {
	r := NewRegistry(
		staticTool{name: "read_note", out: "first"},
		staticTool{name: "read_note", out: "second"},
	)

	if len(r.Definitions()) != 1 {
		t.Fatalf("defs=%d want 1", len(r.Definitions()))
	}
	out, err := r.Execute(context.Background(), "read_note", nil)
	if err != nil || out != "second" {
		t.Fatalf("out=%q err=%v", out, err)
	}
}
