package plugins

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
)

// Metafile is the subset of esbuild's metafile the plugins read.
type Metafile struct {
	Outputs map[string]MetafileOutput `json:"outputs"`
}

type MetafileOutput struct {
	Bytes      int    `json:"bytes"`
	EntryPoint string `json:"entryPoint,omitempty"`
	CSSBundle  string `json:"cssBundle,omitempty"`
}

func parseMetafile(data string) (*Metafile, error) {
	var meta Metafile
	if data == "" {
		return &meta, nil
	}
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// OutputDir returns the absolute directory a build writes to.
func OutputDir(options *api.BuildOptions) string {
	dir := options.Outdir
	if dir == "" && options.Outfile != "" {
		dir = filepath.Dir(options.Outfile)
	}
	return resolvePath(options.AbsWorkingDir, dir)
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, filepath.FromSlash(path))
}

// BuildHash fingerprints a build's output files. It changes whenever any
// output path or content changes.
func BuildHash(files []api.OutputFile) string {
	sorted := slices.Clone(files)
	slices.SortFunc(sorted, func(a, b api.OutputFile) int {
		return strings.Compare(a.Path, b.Path)
	})

	hasher := sha256.New()
	for _, file := range sorted {
		hasher.Write([]byte(file.Path))
		hasher.Write([]byte{0})
		hasher.Write(file.Contents)
	}
	return hex.EncodeToString(hasher.Sum(nil))[:20]
}

// buildOutputs returns the build's output files. When esbuild did not keep
// them in memory they are read back from disk using the metafile.
func buildOutputs(fsys afero.Fs, result *api.BuildResult, workDir string) ([]api.OutputFile, error) {
	if len(result.OutputFiles) > 0 {
		return result.OutputFiles, nil
	}

	meta, err := parseMetafile(result.Metafile)
	if err != nil {
		return nil, fmt.Errorf("could not read metafile: %w", err)
	}

	files := make([]api.OutputFile, 0, len(meta.Outputs))
	for _, output := range slices.Sorted(maps.Keys(meta.Outputs)) {
		path := resolvePath(workDir, output)
		contents, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, err
		}
		files = append(files, api.OutputFile{Path: path, Contents: contents})
	}
	return files, nil
}

func fsOrDefault(fsys afero.Fs) afero.Fs {
	if fsys == nil {
		return afero.NewOsFs()
	}
	return fsys
}

func failed(plugin string, err error) api.OnEndResult {
	return api.OnEndResult{
		Errors: []api.Message{{PluginName: plugin, Text: err.Error()}},
	}
}
