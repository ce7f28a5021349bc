package plugins

import (
	"path/filepath"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryAssets(t *testing.T) {
	meta, err := parseMetafile(`{
		"outputs": {
			"dist/main.js": {"bytes": 10, "entryPoint": "src/main.js", "cssBundle": "dist/main.css"},
			"dist/main.css": {"bytes": 4},
			"dist/chunk-X.js": {"bytes": 3},
			"dist/main.js.map": {"bytes": 20}
		}
	}`)
	require.NoError(t, err)

	workDir := filepath.FromSlash("/project")
	got := EntryAssets(meta, workDir, filepath.Join(workDir, "dist"), "/")

	assert.Equal(t, []Asset{
		{Path: "/main.css", Type: "css"},
		{Path: "/main.js", Type: "js"},
	}, got)
}

func TestWritePage(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/project/src/index.html", []byte(`<head></head><body></body>`), 0644))

	err := writePage(fsys, "/project/src/index.html", "/project/dist", nil, []Asset{
		{Path: "/main.css", Type: "css"},
		{Path: "/main.js", Type: "js"},
	})
	require.NoError(t, err)

	got, err := afero.ReadFile(fsys, "/project/dist/index.html")
	require.NoError(t, err)
	assert.Equal(t,
		`<head><link href="/main.css" rel="stylesheet"></head><body><script type="text/javascript" src="/main.js"></script></body>`,
		string(got))
}

func TestWritePageRendersTemplate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	template := `<head><link rel="icon" href="{{publicPath}}favicon.ico"></head><body data-env="{{environment}}"></body>`
	require.NoError(t, afero.WriteFile(fsys, "/project/src/index.html", []byte(template), 0644))

	err := writePage(fsys, "/project/src/index.html", "/project/dist", map[string]any{
		"publicPath":  "/static/",
		"environment": "production",
	}, nil)
	require.NoError(t, err)

	got, err := afero.ReadFile(fsys, "/project/dist/index.html")
	require.NoError(t, err)
	assert.Equal(t,
		`<head><link rel="icon" href="/static/favicon.ico"></head><body data-env="production"></body>`,
		string(got))
}

func TestOutputDir(t *testing.T) {
	tests := []struct {
		options api.BuildOptions
		want    string
	}{
		{api.BuildOptions{AbsWorkingDir: "/project", Outdir: "dist"}, "/project/dist"},
		{api.BuildOptions{AbsWorkingDir: "/project", Outdir: "/srv/www"}, "/srv/www"},
		{api.BuildOptions{AbsWorkingDir: "/project", Outfile: "build/app.js"}, "/project/build"},
	}

	for _, tt := range tests {
		if got := OutputDir(&tt.options); got != filepath.FromSlash(tt.want) {
			t.Errorf("OutputDir(%+v) = %s, want %s", tt.options, got, tt.want)
		}
	}
}
