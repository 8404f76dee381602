package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConflictPolicy controls what MoveEntry does when the destination name is
// already taken.
type ConflictPolicy string

const (
	ConflictFail       ConflictPolicy = "fail"
	ConflictAutoRename ConflictPolicy = "auto-rename"
)

// MoveOptions shapes one MoveEntry call.
type MoveOptions struct {
	OnConflict ConflictPolicy
	// AllowLockedSource permits moving a note that is currently open in an
	// editor tab. Plain OS renames are not blocked by open readers, so OSFS
	// treats this as informational; richer embeddings may enforce it.
	AllowLockedSource bool
}

// MoveResult reports the outcome of a move, including the final path when
// auto-rename picked a different name than the source carried.
type MoveResult struct {
	Moved     bool
	FinalPath string
}

// FS is the filesystem capability the engine consumes. Implementations must
// be safe for sequential use within one batch; the engine never issues
// concurrent calls.
type FS interface {
	ReadTextFile(ctx context.Context, path string) (string, error)
	ReadDir(ctx context.Context, path string) ([]Entry, error)
	Exists(ctx context.Context, path string) (bool, error)
	MoveEntry(ctx context.Context, sourcePath, destDirPath string, opts MoveOptions) (MoveResult, error)
}

// OSFS implements FS over the local filesystem.
type OSFS struct{}

func NewOSFS() *OSFS {
	return &OSFS{}
}

func (f *OSFS) ReadTextFile(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

func (f *OSFS) ReadDir(_ context.Context, path string) ([]Entry, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, Entry{
			Path:        filepath.Join(path, d.Name()),
			Name:        d.Name(),
			IsDirectory: d.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (f *OSFS) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat: %w", err)
}

func (f *OSFS) MoveEntry(ctx context.Context, sourcePath, destDirPath string, opts MoveOptions) (MoveResult, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return MoveResult{}, fmt.Errorf("stat source: %w", err)
	}
	info, err := os.Stat(destDirPath)
	if err != nil {
		return MoveResult{}, fmt.Errorf("stat destination: %w", err)
	}
	if !info.IsDir() {
		return MoveResult{}, fmt.Errorf("destination is not a directory: %s", destDirPath)
	}

	name := filepath.Base(sourcePath)
	target := filepath.Join(destDirPath, name)
	taken, err := f.Exists(ctx, target)
	if err != nil {
		return MoveResult{}, err
	}
	if taken {
		if opts.OnConflict != ConflictAutoRename {
			return MoveResult{}, fmt.Errorf("destination already exists: %s", target)
		}
		target, err = f.nextFreeName(ctx, destDirPath, name)
		if err != nil {
			return MoveResult{}, err
		}
	}
	if err := os.Rename(sourcePath, target); err != nil {
		return MoveResult{}, fmt.Errorf("move entry: %w", err)
	}
	return MoveResult{Moved: true, FinalPath: target}, nil
}

// nextFreeName probes "name 1.ext", "name 2.ext", ... inside dir.
func (f *OSFS) nextFreeName(ctx context.Context, dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i < 100; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s %d%s", base, i, ext))
		taken, err := f.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s in %s", name, dir)
}
