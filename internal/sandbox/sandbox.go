// Package sandbox stages generated files under .stencil/preview so they can
// be inspected and diffed before anything touches the project tree.
package sandbox

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lucasreid/stencil/internal/diff"
)

const (
	stencilDirName = ".stencil"
	previewDirName = "preview"
)

// Error wraps sandbox failures with the operation that produced them.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("sandbox %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("sandbox %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Sandbox manages the staging area for one project directory.
type Sandbox struct {
	projectDir string
	previewDir string
}

// New creates a sandbox rooted at projectDir and ensures the preview
// directory exists.
func New(projectDir string) (*Sandbox, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, &Error{Op: "init", Path: projectDir, Err: err}
	}
	s := &Sandbox{
		projectDir: abs,
		previewDir: filepath.Join(abs, stencilDirName, previewDirName),
	}
	if err := os.MkdirAll(s.previewDir, 0o755); err != nil {
		return nil, &Error{Op: "init", Path: s.previewDir, Err: err}
	}
	return s, nil
}

// ProjectDir returns the absolute project root.
func (s *Sandbox) ProjectDir() string { return s.projectDir }

// PreviewDir returns the absolute staging directory.
func (s *Sandbox) PreviewDir() string { return s.previewDir }

var (
	windowsDriveRe = regexp.MustCompile(`^[a-zA-Z]:[/\\]`)
	invalidCharsRe = regexp.MustCompile("[<>:\"|?*\\x00-\\x1f]")
)

// ValidatePath rejects paths that would escape the project: absolute paths,
// home-relative paths, parent traversal in any component, and characters
// that are invalid on common filesystems. Both separator styles are checked
// so a path crafted for another platform cannot slip through.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(path, "~") {
		return fmt.Errorf("path %q is home-relative", path)
	}
	if filepath.IsAbs(path) || windowsDriveRe.MatchString(path) ||
		strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return fmt.Errorf("path %q is absolute", path)
	}
	components := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, c := range components {
		if c == ".." {
			return fmt.Errorf("path %q contains parent traversal", path)
		}
	}
	if invalidCharsRe.MatchString(path) {
		return fmt.Errorf("path %q contains invalid characters", path)
	}
	return nil
}

// Write stages content at the given project-relative path.
func (s *Sandbox) Write(relPath, content string) error {
	if err := ValidatePath(relPath); err != nil {
		return &Error{Op: "write", Path: relPath, Err: err}
	}
	dst := filepath.Join(s.previewDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &Error{Op: "write", Path: relPath, Err: err}
	}
	if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
		return &Error{Op: "write", Path: relPath, Err: err}
	}
	return nil
}

// Read returns the staged content at relPath and whether it exists.
func (s *Sandbox) Read(relPath string) (string, bool, error) {
	if err := ValidatePath(relPath); err != nil {
		return "", false, &Error{Op: "read", Path: relPath, Err: err}
	}
	data, err := os.ReadFile(filepath.Join(s.previewDir, filepath.FromSlash(relPath)))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &Error{Op: "read", Path: relPath, Err: err}
	}
	return string(data), true, nil
}

// PendingFile is one staged file awaiting review.
type PendingFile struct {
	RelPath     string
	Content     string
	PreviewPath string
	TargetPath  string
}

// Pending lists all staged files in walk order.
func (s *Sandbox) Pending() ([]PendingFile, error) {
	var files []PendingFile
	err := filepath.WalkDir(s.previewDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.previewDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, PendingFile{
			RelPath:     filepath.ToSlash(rel),
			Content:     string(data),
			PreviewPath: path,
			TargetPath:  filepath.Join(s.projectDir, rel),
		})
		return nil
	})
	if err != nil {
		return nil, &Error{Op: "pending", Err: err}
	}
	return files, nil
}

// FileConflict describes a staged file whose target already exists with
// different content.
type FileConflict struct {
	Path     string
	Existing string
	Incoming string
}

// Diff returns a unified diff from the existing file to the staged one.
func (c FileConflict) Diff() string {
	return diff.Unified(c.Path, c.Existing, c.Incoming)
}

// Conflicts reports staged files that would overwrite existing project files
// with different content. Identical content is not a conflict.
func (s *Sandbox) Conflicts() ([]FileConflict, error) {
	pending, err := s.Pending()
	if err != nil {
		return nil, err
	}
	var conflicts []FileConflict
	for _, f := range pending {
		existing, err := os.ReadFile(f.TargetPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, &Error{Op: "conflicts", Path: f.RelPath, Err: err}
		}
		if string(existing) == f.Content {
			continue
		}
		conflicts = append(conflicts, FileConflict{
			Path:     f.RelPath,
			Existing: string(existing),
			Incoming: f.Content,
		})
	}
	return conflicts, nil
}

// Apply copies every staged file into the project and clears the staging
// area. Without force it refuses when any conflict exists, naming every
// conflicting path, and copies nothing. The conflict check and the copy are
// not atomic against concurrent writers; a single caller at a time is
// assumed, which matches interactive CLI use.
func (s *Sandbox) Apply(force bool) ([]string, error) {
	if !force {
		conflicts, err := s.Conflicts()
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			paths := make([]string, len(conflicts))
			for i, c := range conflicts {
				paths[i] = c.Path
			}
			return nil, &Error{Op: "apply", Err: fmt.Errorf(
				"refusing to overwrite %d existing file(s): %s (use --force or resolve in review)",
				len(paths), strings.Join(paths, ", "))}
		}
	}

	pending, err := s.Pending()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, f := range pending {
		if err := os.MkdirAll(filepath.Dir(f.TargetPath), 0o755); err != nil {
			return applied, &Error{Op: "apply", Path: f.RelPath, Err: err}
		}
		if err := os.WriteFile(f.TargetPath, []byte(f.Content), 0o644); err != nil {
			return applied, &Error{Op: "apply", Path: f.RelPath, Err: err}
		}
		applied = append(applied, f.RelPath)
	}

	if err := s.Clear(); err != nil {
		return applied, err
	}
	return applied, nil
}

// Clear empties the staging area, leaving the preview directory in place.
func (s *Sandbox) Clear() error {
	if err := os.RemoveAll(s.previewDir); err != nil {
		return &Error{Op: "clear", Err: err}
	}
	if err := os.MkdirAll(s.previewDir, 0o755); err != nil {
		return &Error{Op: "clear", Err: err}
	}
	return nil
}

// Remove drops a single staged file, pruning directories it leaves empty.
// Returns false when the path was not staged.
func (s *Sandbox) Remove(relPath string) (bool, error) {
	if err := ValidatePath(relPath); err != nil {
		return false, &Error{Op: "remove", Path: relPath, Err: err}
	}
	target := filepath.Join(s.previewDir, filepath.FromSlash(relPath))
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.Remove(target); err != nil {
		return false, &Error{Op: "remove", Path: relPath, Err: err}
	}
	for dir := filepath.Dir(target); dir != s.previewDir; dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return true, nil
}

// Stats summarizes the staging area.
type Stats struct {
	Pending    int
	Conflicts  int
	TotalBytes int64
	PreviewDir string
}

// Status reports staged file counts, conflicts, and total size.
func (s *Sandbox) Status() (Stats, error) {
	pending, err := s.Pending()
	if err != nil {
		return Stats{}, err
	}
	conflicts, err := s.Conflicts()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Pending:    len(pending),
		Conflicts:  len(conflicts),
		PreviewDir: s.previewDir,
	}
	for _, f := range pending {
		st.TotalBytes += int64(len(f.Content))
	}
	return st, nil
}

// SortedPending returns pending files sorted by relative path.
func (s *Sandbox) SortedPending() ([]PendingFile, error) {
	files, err := s.Pending()
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
