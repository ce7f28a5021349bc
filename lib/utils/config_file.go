package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ConfigFileNames are the project file names looked up in the root
// directory, in order of preference.
var ConfigFileNames = []string{
	"html-externals.toml",
	"html-externals.json",
	"html-externals.jsonc",
	"html-externals.yaml",
	"html-externals.yml",
}

var ErrNoConfigFile = errors.New("no html-externals configuration file found")

// DetectConfigFile returns the path of the first project file present in
// rootDir.
func DetectConfigFile(rootDir string) (string, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(rootDir, name)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		if !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoConfigFile, rootDir)
}

// ReadConfigFile decodes a toml, json, jsonc or yaml file into a generic
// document.
func ReadConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := DecodeConfig(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", filepath.Base(path), err)
	}
	return config, nil
}

// DecodeConfig decodes data according to the file extension ext.
func DecodeConfig(ext string, data []byte) (map[string]any, error) {
	config := map[string]any{}

	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported configuration file type %q", ext)
	}

	return config, nil
}
