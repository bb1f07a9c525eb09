package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSandbox(t *testing.T) (*Sandbox, string) {
	t.Helper()
	dir := t.TempDir()
	sb, err := New(dir)
	require.NoError(t, err)
	return sb, dir
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		ok   bool
	}{
		{"simple", "main.py", true},
		{"nested", "internal/store/store.go", true},
		{"dotfile", ".env.example", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"absolute unix", "/etc/passwd", false},
		{"absolute windows", `C:\Windows\system32`, false},
		{"windows forward slash", "c:/windows", false},
		{"home relative", "~/secrets", false},
		{"parent traversal", "../outside.txt", false},
		{"embedded traversal", "a/../../b.txt", false},
		{"backslash traversal", `a\..\..\b.txt`, false},
		{"leading backslash", `\share\file`, false},
		{"invalid chars", "bad<name>.txt", false},
		{"control char", "bad\x00name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	sb, _ := newSandbox(t)

	require.NoError(t, sb.Write("pkg/main.py", "print('hi')\n"))

	content, ok, err := sb.Read("pkg/main.py")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "print('hi')\n", content)

	_, ok, err = sb.Read("pkg/other.py")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteRejectsEscapingPaths(t *testing.T) {
	sb, dir := newSandbox(t)

	err := sb.Write("../escape.txt", "nope")
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "..", "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPendingListsStagedFiles(t *testing.T) {
	sb, dir := newSandbox(t)

	require.NoError(t, sb.Write("a.txt", "A"))
	require.NoError(t, sb.Write("sub/b.txt", "BB"))

	pending, err := sb.SortedPending()
	require.NoError(t, err)
	require.Len(t, pending, 2)

	assert.Equal(t, "a.txt", pending[0].RelPath)
	assert.Equal(t, "A", pending[0].Content)
	assert.Equal(t, filepath.Join(dir, "a.txt"), pending[0].TargetPath)
	assert.Equal(t, "sub/b.txt", pending[1].RelPath)
}

func TestConflicts(t *testing.T) {
	sb, dir := newSandbox(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "same.txt"), []byte("identical"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "differs.txt"), []byte("old"), 0o644))

	require.NoError(t, sb.Write("same.txt", "identical"))
	require.NoError(t, sb.Write("differs.txt", "new"))
	require.NoError(t, sb.Write("fresh.txt", "brand new"))

	conflicts, err := sb.Conflicts()
	require.NoError(t, err)
	require.Len(t, conflicts, 1, "identical and fresh files are not conflicts")
	assert.Equal(t, "differs.txt", conflicts[0].Path)
	assert.Equal(t, "old", conflicts[0].Existing)
	assert.Equal(t, "new", conflicts[0].Incoming)
	assert.Contains(t, conflicts[0].Diff(), "-old")
	assert.Contains(t, conflicts[0].Diff(), "+new")

	again, err := sb.Conflicts()
	require.NoError(t, err)
	assert.Equal(t, conflicts, again, "detection must be idempotent without mutation")
}

func TestApplyCopiesAndClears(t *testing.T) {
	sb, dir := newSandbox(t)

	require.NoError(t, sb.Write("x/y.txt", "content"))

	applied, err := sb.Apply(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"x/y.txt"}, applied)

	data, err := os.ReadFile(filepath.Join(dir, "x", "y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	st, err := sb.Status()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Pending, "apply should clear staging")
}

func TestApplyRefusesOnConflict(t *testing.T) {
	sb, dir := newSandbox(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("old b"), 0o644))
	require.NoError(t, sb.Write("a.txt", "new a"))
	require.NoError(t, sb.Write("b.txt", "new b"))
	require.NoError(t, sb.Write("c.txt", "new c"))

	_, err := sb.Apply(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.txt")
	assert.Contains(t, err.Error(), "b.txt")

	// Nothing was copied, not even the non-conflicting file.
	_, statErr := os.Stat(filepath.Join(dir, "c.txt"))
	assert.True(t, os.IsNotExist(statErr))

	data, readErr := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "old a", string(data))
}

func TestApplyForceOverwrites(t *testing.T) {
	sb, dir := newSandbox(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old"), 0o644))
	require.NoError(t, sb.Write("a.txt", "new"))

	applied, err := sb.Apply(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, applied)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestClearRecreatesEmptyPreview(t *testing.T) {
	sb, _ := newSandbox(t)

	require.NoError(t, sb.Write("a.txt", "A"))
	require.NoError(t, sb.Clear())

	info, err := os.Stat(sb.PreviewDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	pending, err := sb.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRemovePrunesEmptyDirs(t *testing.T) {
	sb, _ := newSandbox(t)

	require.NoError(t, sb.Write("deep/nested/file.txt", "x"))
	require.NoError(t, sb.Write("deep/other.txt", "y"))

	removed, err := sb.Remove("deep/nested/file.txt")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = os.Stat(filepath.Join(sb.PreviewDir(), "deep", "nested"))
	assert.True(t, os.IsNotExist(err), "emptied dir should be pruned")
	_, err = os.Stat(filepath.Join(sb.PreviewDir(), "deep"))
	assert.NoError(t, err, "non-empty ancestor stays")

	removed, err = sb.Remove("deep/nested/file.txt")
	require.NoError(t, err)
	assert.False(t, removed, "second remove reports not staged")
}

func TestStatus(t *testing.T) {
	sb, dir := newSandbox(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old"), 0o644))
	require.NoError(t, sb.Write("a.txt", "new!"))
	require.NoError(t, sb.Write("b.txt", "bb"))

	st, err := sb.Status()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, 1, st.Conflicts)
	assert.Equal(t, int64(6), st.TotalBytes)
	assert.Equal(t, sb.PreviewDir(), st.PreviewDir)
}
