package organizer

import (
	"reflect"
	"testing"

	"mdit/internal/vault"
)

func TestCollectTargetsFiltersAndDedupes(t *testing.T) {
	entries := []vault.Entry{
		{Path: "/ws/a.md", Name: "a.md"},
		{Path: "/ws/sub", Name: "sub", IsDirectory: true},
		{Path: "/ws/pic.png", Name: "pic.png"},
		{Path: "/ws/b.md", Name: "b.md"},
		{Path: "/ws/a.md", Name: "a (renamed).md"},
	}
	got := CollectTargets(entries)

	want := []vault.Entry{
		{Path: "/ws/a.md", Name: "a (renamed).md"},
		{Path: "/ws/b.md", Name: "b.md"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("targets=%+v want %+v", got, want)
	}
}

func TestCollectTargetsLastOccurrenceWinsKeepsFirstPosition(t *testing.T) {
	entries := []vault.Entry{
		{Path: "/ws/a.md", Name: "a.md"},
		{Path: "/ws/b.md", Name: "b.md"},
		{Path: "/ws/a.md", Name: "a2.md"},
	}
	got := CollectTargets(entries)
	if len(got) != 2 {
		t.Fatalf("len=%d want 2", len(got))
	}
	if got[0].Path != "/ws/a.md" || got[0].Name != "a2.md" {
		t.Fatalf("first=%+v, want overwritten a.md at original position", got[0])
	}
	if got[1].Path != "/ws/b.md" {
		t.Fatalf("second=%+v", got[1])
	}
}

func TestCollectTargetsEmpty(t *testing.T) {
	if got := CollectTargets(nil); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
	only := []vault.Entry{{Path: "/ws/dir", Name: "dir", IsDirectory: true}}
	if got := CollectTargets(only); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}
