package taskfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"taskfile/pkg/task"
)

// Ext is the file extension of task files
const Ext = ".task"

// ErrConflict is returned by Save when the file changed after it was loaded
var ErrConflict = errors.New("file has been modified externally")

// Session holds a task file as it was when loaded
type Session struct {
	Path             string
	OriginalContent  []byte
	OriginalChecksum string
	LastModified     time.Time
	Exists           bool

	// MaxBodySize overrides the decoder's body limit when non-zero
	MaxBodySize int
}

// SaveResult describes a Save call
type SaveResult struct {
	Changed      bool
	NewChecksum  string
	ProposedDiff string
	ExternalDiff string
}

// Load reads a task file. A missing file yields an empty session so that new
// tasks can be saved through the same path.
func Load(path string) (*Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Session{
				Path:             path,
				OriginalChecksum: checksum(nil),
			}, nil
		}
		return nil, fmt.Errorf("failed to stat task file: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	return &Session{
		Path:             path,
		OriginalContent:  content,
		OriginalChecksum: checksum(content),
		LastModified:     info.ModTime(),
		Exists:           true,
	}, nil
}

// Task parses the loaded content
func (s *Session) Task() (*task.Task, error) {
	if !s.Exists {
		return nil, fmt.Errorf("%s: %w", s.Path, os.ErrNotExist)
	}
	dec := task.NewDecoder(bytes.NewReader(s.OriginalContent))
	if s.MaxBodySize != 0 {
		dec.MaxBodySize = s.MaxBodySize
	}
	t, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return t, nil
}

// Format returns the canonical rendering of t and a diff against the loaded content
func (s *Session) Format(t *task.Task) ([]byte, string, error) {
	data, err := task.Format(t)
	if err != nil {
		return nil, "", err
	}
	return data, GenerateDiff(string(s.OriginalContent), string(data)), nil
}

// Save writes t in canonical form. If the file on disk no longer matches the
// loaded content, nothing is written and the error wraps ErrConflict.
func (s *Session) Save(t *task.Task) (*SaveResult, error) {
	data, proposed, err := s.Format(t)
	if err != nil {
		return nil, err
	}

	current, err := os.ReadFile(s.Path)
	switch {
	case err == nil:
		if checksum(current) != s.OriginalChecksum {
			return &SaveResult{
				ProposedDiff: proposed,
				ExternalDiff: GenerateDiff(string(s.OriginalContent), string(current)),
			}, fmt.Errorf("%s: %w", s.Path, ErrConflict)
		}
	case os.IsNotExist(err):
		if s.Exists {
			return nil, fmt.Errorf("%s: removed after loading: %w", s.Path, ErrConflict)
		}
	default:
		return nil, fmt.Errorf("failed to read current task file: %w", err)
	}

	result := &SaveResult{
		NewChecksum:  checksum(data),
		ProposedDiff: proposed,
	}
	if bytes.Equal(current, data) {
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write task file: %w", err)
	}

	s.OriginalContent = data
	s.OriginalChecksum = result.NewChecksum
	s.Exists = true
	result.Changed = true
	return result, nil
}

// List returns the task files directly inside dir, sorted by name. Hidden
// files are skipped.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read task directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasSuffix(name, Ext) && !strings.HasPrefix(name, ".") {
			names = append(names, name)
		}
	}
	return names, nil
}

// checksum calculates the SHA256 checksum of content
func checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// GenerateDiff returns a unified diff with three lines of context
func GenerateDiff(original, current string) string {
	if original == current {
		return "No differences"
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(current),
		FromFile: "original",
		ToFile:   "current",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("failed to generate diff: %v", err)
	}
	return diff
}
