package organizer

import (
	"fmt"
	"path/filepath"

	"mdit/internal/vault"
)

// Status is the per-target state. Every operation starts pending and moves to
// exactly one terminal status; terminal statuses are never overwritten.
type Status string

const (
	StatusPending   Status = "pending"
	StatusMoved     Status = "moved"
	StatusRenamed   Status = "renamed"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
)

// MoveOperation tracks one target through a move batch.
type MoveOperation struct {
	Path               string
	Status             Status
	CurrentDirPath     string
	DestinationDirPath string
	NewPath            string
	Reason             string
}

// RenameOperation tracks one target through a rename batch.
type RenameOperation struct {
	Path              string
	Status            Status
	SuggestedBaseName string
	FinalFileName     string
	Reason            string
}

// PublicMoveOperation is the caller-facing projection of a terminal
// MoveOperation.
type PublicMoveOperation struct {
	Path               string `json:"path"`
	Status             Status `json:"status"`
	DestinationDirPath string `json:"destinationDirPath,omitempty"`
	NewPath            string `json:"newPath,omitempty"`
	Reason             string `json:"reason,omitempty"`
}

// PublicRenameOperation is the caller-facing projection of a terminal
// RenameOperation.
type PublicRenameOperation struct {
	Path              string `json:"path"`
	Status            Status `json:"status"`
	SuggestedBaseName string `json:"suggestedBaseName,omitempty"`
	FinalFileName     string `json:"finalFileName,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

// newMoveLedger creates one pending operation per target, keyed by path.
func newMoveLedger(targets []vault.Entry) map[string]*MoveOperation {
	ops := make(map[string]*MoveOperation, len(targets))
	for _, t := range targets {
		ops[t.Path] = &MoveOperation{
			Path:           t.Path,
			Status:         StatusPending,
			CurrentDirPath: filepath.Dir(t.Path),
		}
	}
	return ops
}

func newRenameLedger(targets []vault.Entry) map[string]*RenameOperation {
	ops := make(map[string]*RenameOperation, len(targets))
	for _, t := range targets {
		ops[t.Path] = &RenameOperation{
			Path:   t.Path,
			Status: StatusPending,
		}
	}
	return ops
}

func (op *MoveOperation) toPublic() (PublicMoveOperation, error) {
	if op.Status == StatusPending {
		return PublicMoveOperation{}, fmt.Errorf("%w: %s", ErrPendingOperation, op.Path)
	}
	return PublicMoveOperation{
		Path:               op.Path,
		Status:             op.Status,
		DestinationDirPath: op.DestinationDirPath,
		NewPath:            op.NewPath,
		Reason:             op.Reason,
	}, nil
}

func (op *RenameOperation) toPublic() (PublicRenameOperation, error) {
	if op.Status == StatusPending {
		return PublicRenameOperation{}, fmt.Errorf("%w: %s", ErrPendingOperation, op.Path)
	}
	return PublicRenameOperation{
		Path:              op.Path,
		Status:            op.Status,
		SuggestedBaseName: op.SuggestedBaseName,
		FinalFileName:     op.FinalFileName,
		Reason:            op.Reason,
	}, nil
}

// MoveCounts aggregates terminal statuses of a move batch.
type MoveCounts struct {
	Moved     int
	Unchanged int
	Failed    int
}

// RenameCounts aggregates terminal statuses of a rename batch.
type RenameCounts struct {
	Renamed   int
	Unchanged int
	Failed    int
}

func countMoveStatuses(ops map[string]*MoveOperation) MoveCounts {
	var c MoveCounts
	for _, op := range ops {
		switch op.Status {
		case StatusMoved:
			c.Moved++
		case StatusUnchanged:
			c.Unchanged++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}

func countRenameStatuses(ops map[string]*RenameOperation) RenameCounts {
	var c RenameCounts
	for _, op := range ops {
		switch op.Status {
		case StatusRenamed:
			c.Renamed++
		case StatusUnchanged:
			c.Unchanged++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}
