// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package version

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister returns a fixed version list.
type fakeLister []int

func (f fakeLister) ListVersions(string) ([]int, error) { return f, nil }

func TestResolveAuto(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{"no existing versions", nil, 1},
		{"single version", []int{1}, 2},
		{"contiguous versions", []int{1, 2, 3}, 4},
		{"gapped versions", []int{1, 3, 5}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, warning, err := Resolve(fakeLister(tt.existing), "proj", Auto)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.Empty(t, warning)
		})
	}
}

func TestResolveExplicit(t *testing.T) {
	tests := []struct {
		name        string
		spec        string
		existing    []int
		want        int
		wantWarning bool
	}{
		{"plain integer", "3", []int{1}, 3, false},
		{"v prefix", "v2", nil, 2, false},
		{"creates a gap", "7", []int{1, 2}, 7, false},
		{"collides with existing", "v2", []int{1, 2, 3}, 2, true},
		{"unparseable falls back to auto", "latest", []int{1, 4}, 5, true},
		{"zero falls back to auto", "v0", []int{1}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, warning, err := Resolve(fakeLister(tt.existing), "proj", tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			if tt.wantWarning {
				assert.NotEmpty(t, warning)
			} else {
				assert.Empty(t, warning)
			}
		})
	}
}

func TestDirListerScansSiblings(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{
		"proj_v1", "proj_v3", "proj_v10",
		"proj_vX",      // unparseable suffix
		"other_v2",     // different project
		"proj_v2_copy", // trailing junk
	} {
		require.NoError(t, os.Mkdir(filepath.Join(root, dir), 0o755))
	}
	// A plain file that matches the pattern must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "proj_v4"), nil, 0o644))

	versions, err := DirLister{Root: root}.ListVersions("proj")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 10}, versions)
}

func TestDirListerMissingRoot(t *testing.T) {
	versions, err := DirLister{Root: filepath.Join(t.TempDir(), "nope")}.ListVersions("proj")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestResolveAgainstFilesystem(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "proj_v1"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "proj_v5"), 0o755))

	n, warning, err := Resolve(DirLister{Root: root}, "proj", Auto)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Empty(t, warning)
	assert.Equal(t, "proj_v6", DirName("proj", n))
}

func TestNormalizeProjectName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"github url", "https://github.com/user/my-repo", "my_repo"},
		{"github url with .git", "https://github.com/user/repo.git", "repo"},
		{"trailing slash", "https://github.com/user/repo/", "repo"},
		{"local path", "/path/to/Project Name", "project_name"},
		{"mixed separators", "My  Weird--Repo", "my_weird_repo"},
		{"empty input", "", "unknown_repo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProjectName(tt.input))
		})
	}
}
