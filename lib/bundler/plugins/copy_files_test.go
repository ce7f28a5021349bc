package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	workDir := filepath.FromSlash("/project")
	outDir := filepath.FromSlash("/project/dist")

	require.NoError(t, afero.WriteFile(fsys, filepath.Join(workDir, "node_modules", "jquery", "dist", "jquery.min.js"), []byte("jq"), 0644))
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(workDir, "node_modules", "jquery", "dist", "jquery.min.map"), []byte("map"), 0600))

	err := CopyFiles(fsys, workDir, outDir, []CopyRule{
		{From: "node_modules/jquery/dist/jquery.min.js", To: "vendor/jquery/dist/jquery.min.js"},
		{From: "node_modules/jquery/dist/jquery.min.map", To: "vendor/jquery/dist/jquery.min.map"},
	})
	require.NoError(t, err)

	data, err := afero.ReadFile(fsys, filepath.Join(outDir, "vendor", "jquery", "dist", "jquery.min.js"))
	require.NoError(t, err)
	assert.Equal(t, "jq", string(data))

	info, err := fsys.Stat(filepath.Join(outDir, "vendor", "jquery", "dist", "jquery.min.map"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCopyFilesReportsEveryMissingFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/project/node_modules/a/a.js", []byte("a"), 0644))

	err := CopyFiles(fsys, "/project", "/project/dist", []CopyRule{
		{From: "node_modules/missing/one.js", To: "vendor/missing/one.js"},
		{From: "node_modules/a/a.js", To: "vendor/a/a.js"},
		{From: "node_modules/missing/two.js", To: "vendor/missing/two.js"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node_modules/missing/one.js")
	assert.Contains(t, err.Error(), "node_modules/missing/two.js")

	exists, err := afero.Exists(fsys, "/project/dist/vendor/a/a.js")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCopyFilesRejectsDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/project/node_modules/a/dist", 0755))

	err := CopyFiles(fsys, "/project", "/project/dist", []CopyRule{
		{From: "node_modules/a/dist", To: "vendor/a/dist"},
	})
	assert.ErrorContains(t, err, "is a directory")
}
