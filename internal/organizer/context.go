package organizer

import (
	"context"
	"fmt"
	"strings"

	"mdit/internal/vault"
)

// moveBatch is the mutable state of one move batch. It is created at batch
// start, mutated only by tool handlers (one call at a time), and discarded
// when the finalizer returns.
type moveBatch struct {
	fs            vault.FS
	targets       []vault.Entry
	ops           map[string]*MoveOperation
	candidateDirs []string
	candidateSet  map[string]bool
}

func newMoveBatch(ctx context.Context, fs vault.FS, workspaceRoot string, targets []vault.Entry) (*moveBatch, error) {
	dirs, err := collectCandidateDirs(ctx, fs, workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("collect candidate directories: %w", err)
	}
	set := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		set[d] = true
	}
	// Every target's current directory is a valid destination even if the
	// workspace walk missed it.
	b := &moveBatch{
		fs:            fs,
		targets:       targets,
		ops:           newMoveLedger(targets),
		candidateDirs: dirs,
		candidateSet:  set,
	}
	for _, t := range targets {
		dir := b.ops[t.Path].CurrentDirPath
		if !b.candidateSet[dir] {
			b.candidateSet[dir] = true
			b.candidateDirs = append(b.candidateDirs, dir)
		}
	}
	return b, nil
}

func (b *moveBatch) pendingPaths() []string {
	pending := []string{}
	for _, t := range b.targets {
		if op := b.ops[t.Path]; op != nil && op.Status == StatusPending {
			pending = append(pending, t.Path)
		}
	}
	return pending
}

// renameBatch is the mutable state of one rename batch. Proposals are stored
// raw; validation happens once, inside finalization.
type renameBatch struct {
	fs           vault.FS
	dirPath      string
	targets      []vault.Entry
	ops          map[string]*RenameOperation
	proposals    map[string]string
	siblingNames []string
	finalized    bool
}

func newRenameBatch(ctx context.Context, fs vault.FS, dirPath string, targets []vault.Entry) (*renameBatch, error) {
	entries, err := fs.ReadDir(ctx, dirPath)
	if err != nil {
		return nil, fmt.Errorf("list sibling notes: %w", err)
	}
	siblings := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDirectory {
			siblings = append(siblings, e.Name)
		}
	}
	return &renameBatch{
		fs:           fs,
		dirPath:      dirPath,
		targets:      targets,
		ops:          newRenameLedger(targets),
		proposals:    make(map[string]string, len(targets)),
		siblingNames: siblings,
	}, nil
}

// pendingPaths lists targets without a stored proposal, in target order.
func (b *renameBatch) pendingPaths() []string {
	pending := []string{}
	for _, t := range b.targets {
		if _, ok := b.proposals[t.Path]; !ok {
			pending = append(pending, t.Path)
		}
	}
	return pending
}

// collectCandidateDirs walks the workspace and returns every directory,
// root first, in traversal order. Hidden directories are skipped.
func collectCandidateDirs(ctx context.Context, fs vault.FS, root string) ([]string, error) {
	dirs := []string{root}
	var walk func(dir string) error
	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := fs.ReadDir(ctx, dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDirectory || strings.HasPrefix(e.Name, ".") {
				continue
			}
			dirs = append(dirs, e.Path)
			if err := walk(e.Path); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return dirs, nil
}
