package organizer

import (
	"errors"
	"testing"

	"mdit/internal/vault"
)

func TestNewMoveLedgerDefaults(t *testing.T) {
	targets := []vault.Entry{
		{Path: "/ws/inbox/plan.md", Name: "plan.md"},
		{Path: "/ws/todo.md", Name: "todo.md"},
	}
	ops := newMoveLedger(targets)
	if len(ops) != 2 {
		t.Fatalf("len=%d want 2", len(ops))
	}
	op := ops["/ws/inbox/plan.md"]
	if op.Status != StatusPending {
		t.Fatalf("status=%s want pending", op.Status)
	}
	if op.CurrentDirPath != "/ws/inbox" {
		t.Fatalf("currentDirPath=%s", op.CurrentDirPath)
	}
}

func TestToPublicRejectsPending(t *testing.T) {
	op := &MoveOperation{Path: "/ws/a.md", Status: StatusPending}
	if _, err := op.toPublic(); !errors.Is(err, ErrPendingOperation) {
		t.Fatalf("err=%v want ErrPendingOperation", err)
	}
	rop := &RenameOperation{Path: "/ws/a.md", Status: StatusPending}
	if _, err := rop.toPublic(); !errors.Is(err, ErrPendingOperation) {
		t.Fatalf("err=%v want ErrPendingOperation", err)
	}
}

func TestToPublicOmitsEmptyFields(t *testing.T) {
	op := &MoveOperation{Path: "/ws/a.md", Status: StatusFailed, Reason: "disk full"}
	pub, err := op.toPublic()
	if err != nil {
		t.Fatal(err)
	}
	if pub.Reason != "disk full" || pub.DestinationDirPath != "" {
		t.Fatalf("pub=%+v", pub)
	}
}

func TestCountStatuses(t *testing.T) {
	mops := map[string]*MoveOperation{
		"a": {Status: StatusMoved},
		"b": {Status: StatusMoved},
		"c": {Status: StatusUnchanged},
		"d": {Status: StatusFailed},
		"e": {Status: StatusPending},
	}
	c := countMoveStatuses(mops)
	if c.Moved != 2 || c.Unchanged != 1 || c.Failed != 1 {
		t.Fatalf("counts=%+v", c)
	}

	rops := map[string]*RenameOperation{
		"a": {Status: StatusRenamed},
		"b": {Status: StatusUnchanged},
		"c": {Status: StatusFailed},
	}
	rc := countRenameStatuses(rops)
	if rc.Renamed != 1 || rc.Unchanged != 1 || rc.Failed != 1 {
		t.Fatalf("counts=%+v", rc)
	}
}
