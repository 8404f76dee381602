package vault

import (
	"path/filepath"
	"strings"
)

// Entry is one workspace entry as supplied by the caller. Immutable input.
type Entry struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
}

// noteExtensions are the file extensions treated as notes.
var noteExtensions = map[string]bool{
	".md": true,
}

// IsNote reports whether path has a recognized note extension.
func IsNote(path string) bool {
	return noteExtensions[strings.ToLower(filepath.Ext(path))]
}
