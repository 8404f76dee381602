package organizer

import "mdit/internal/vault"

// CollectTargets filters raw entries down to the eligible note set: files with
// a recognized note extension, deduplicated by path. When the same path occurs
// more than once the last occurrence wins, but it keeps the position of the
// first occurrence, so output order stays stable relative to input traversal.
func CollectTargets(entries []vault.Entry) []vault.Entry {
	out := make([]vault.Entry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.IsDirectory || !vault.IsNote(e.Path) {
			continue
		}
		if i, seen := index[e.Path]; seen {
			out[i] = e
			continue
		}
		index[e.Path] = len(out)
		out = append(out, e)
	}
	return out
}
