// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		file string
		opts Options
		want bool
	}{
		{name: "notebook", file: "analysis.ipynb", want: true},
		{name: "checkpoint copy", file: "analysis-checkpoint.ipynb", want: false},
		{name: "marker anywhere in name", file: "checkpoints_demo.ipynb", want: false},
		{name: "python script", file: "analysis.py", want: false},
		{name: "extension in middle", file: "analysis.ipynb.bak", want: false},
		{name: "custom extension", file: "slides.nb", opts: Options{Extension: ".nb"}, want: true},
		{name: "custom marker", file: "draft.ipynb", opts: Options{ExcludeMarker: "draft"}, want: false},
		{name: "empty marker keeps default", file: "x-checkpoint.ipynb", opts: Options{ExcludeMarker: ""}, want: false},
		{name: "custom marker lets checkpoint through", file: "x-checkpoint.ipynb", opts: Options{ExcludeMarker: "draft"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.file, tt.opts))
		})
	}
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"b.ipynb",
		"a.ipynb",
		"notes.txt",
		"sub/c.ipynb",
		"sub/.ipynb_checkpoints/c-checkpoint.ipynb",
		"sub/deeper/d.ipynb",
		"sub/deeper/d.py",
	}
	for _, f := range files {
		writeFile(t, root, f)
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.ipynb"), 0o755))

	got, err := Walk(root, Options{})
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.ipynb"),
		filepath.Join(root, "b.ipynb"),
		filepath.Join(root, "sub", "c.ipynb"),
		filepath.Join(root, "sub", "deeper", "d.ipynb"),
	}
	assert.Equal(t, want, got)
}

func TestWalkSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real/a.ipynb")
	writeFile(t, root, "shared/b.ipynb")
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "a.ipynb"), filepath.Join(root, "link.ipynb")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.ipynb"), filepath.Join(root, "dangling.ipynb")))
	require.NoError(t, os.Symlink(filepath.Join(root, "shared"), filepath.Join(root, "linked-dir.ipynb")))
	require.NoError(t, os.Symlink(filepath.Join(root, "shared"), filepath.Join(root, "zlinked")))

	got, err := Walk(root, Options{})
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "dangling.ipynb"),
		filepath.Join(root, "link.ipynb"),
		filepath.Join(root, "real", "a.ipynb"),
		filepath.Join(root, "shared", "b.ipynb"),
	}
	assert.Equal(t, want, got)
}

func TestWalkEmptyTree(t *testing.T) {
	got, err := Walk(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walking")
}

func TestDefaultRoot(t *testing.T) {
	assert.Equal(t, filepath.Join("/", "project"), DefaultRoot(filepath.Join("/", "project", "test")))
	assert.Equal(t, filepath.Join("/", "project"), DefaultRoot(filepath.Join("/", "project", "test")+string(filepath.Separator)))
}

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}
