package externals

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultOutputPath is the directory, relative to the build outdir, that
// vendor files are copied into when no outputPath is configured.
const DefaultOutputPath = "vendor"

type AssetType string

const (
	AssetUnset AssetType = ""
	AssetJS    AssetType = "js"
	AssetCSS   AssetType = "css"
)

// Entry is one file of an external module, either relative to the module
// directory inside node_modules or a fully qualified URL.
type Entry struct {
	Path string    `json:"path"`
	Type AssetType `json:"type,omitempty"`
}

// Entries accepts a string, an {path, type} object or a list of either.
type Entries []Entry

func (e *Entries) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty entry")
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		entries := make(Entries, 0, len(items))
		for i, item := range items {
			entry, err := decodeEntry(item)
			if err != nil {
				return fmt.Errorf("entry[%d]: %w", i, err)
			}
			entries = append(entries, entry)
		}
		*e = entries
		return nil
	case 'n':
		*e = nil
		return nil
	}

	entry, err := decodeEntry(data)
	if err != nil {
		return err
	}
	*e = Entries{entry}
	return nil
}

func decodeEntry(data json.RawMessage) (Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var path string
		if err := json.Unmarshal(data, &path); err != nil {
			return Entry{}, err
		}
		return Entry{Path: path}, nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("expected a path or a {path, type} object: %w", err)
	}
	return entry, nil
}

// Files restricts which HTML pages get tags. Nil means every page.
type Files []string

func (f *Files) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var pattern string
		if err := json.Unmarshal(data, &pattern); err != nil {
			return err
		}
		*f = Files{pattern}
		return nil
	}

	var patterns []string
	if err := json.Unmarshal(data, &patterns); err != nil {
		return fmt.Errorf("files must be a string or a list of strings: %w", err)
	}
	*f = patterns
	return nil
}

// ExternalSpec declares one module that is left out of the bundle.
type ExternalSpec struct {
	Module      string   `json:"module"`
	Entry       Entries  `json:"entry"`
	Global      *string  `json:"global,omitempty"`
	Supplements []string `json:"supplements,omitempty"`
	Append      bool     `json:"append,omitempty"`
}

type Config struct {
	Externals  []ExternalSpec `json:"externals"`
	Hash       bool           `json:"hash,omitempty"`
	OutputPath *string        `json:"outputPath,omitempty"`
	PublicPath *string        `json:"publicPath,omitempty"`
	Files      Files          `json:"files,omitempty"`
}

// WithDefaults returns a copy of c with every optional field filled in.
// The receiver is left untouched.
func (c Config) WithDefaults() Config {
	out := Config{
		Externals: make([]ExternalSpec, len(c.Externals)),
		Hash:      c.Hash,
	}

	for i, spec := range c.Externals {
		spec.Entry = append(Entries(nil), spec.Entry...)
		if spec.Supplements == nil {
			spec.Supplements = []string{}
		} else {
			spec.Supplements = append([]string(nil), spec.Supplements...)
		}
		out.Externals[i] = spec
	}

	outputPath := DefaultOutputPath
	if c.OutputPath != nil {
		outputPath = *c.OutputPath
	}
	out.OutputPath = &outputPath

	if c.PublicPath != nil {
		publicPath := *c.PublicPath
		out.PublicPath = &publicPath
	}

	if c.Files != nil {
		out.Files = append(Files(nil), c.Files...)
	}

	return out
}

// Violation is a single problem found in a configuration.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s", v.Field, v.Message)
}

// Validate reports every problem with c. An empty result means c can be
// planned.
func (c Config) Validate() []Violation {
	var violations []Violation
	add := func(field, format string, args ...any) {
		violations = append(violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(c.Externals) == 0 {
		add("externals", "must contain at least one external")
	}

	for i, spec := range c.Externals {
		prefix := fmt.Sprintf("externals[%d]", i)

		if spec.Module == "" {
			add(prefix+".module", "is required")
		}

		if len(spec.Entry) == 0 {
			add(prefix+".entry", "must contain at least one entry")
		}

		if spec.Global != nil && *spec.Global == "" {
			add(prefix+".global", "must not be empty, omit it to keep the import external")
		}

		for j, entry := range spec.Entry {
			field := fmt.Sprintf("%s.entry[%d]", prefix, j)
			if entry.Path == "" {
				add(field+".path", "is required")
			}
			switch entry.Type {
			case AssetUnset, AssetJS, AssetCSS:
			default:
				add(field+".type", "must be one of %q, %q, got %q", AssetJS, AssetCSS, entry.Type)
			}
		}

		for j, supplement := range spec.Supplements {
			if supplement == "" {
				add(fmt.Sprintf("%s.supplements[%d]", prefix, j), "must not be empty")
			}
		}
	}

	if c.Files != nil {
		if len(c.Files) == 0 {
			add("files", "must contain at least one pattern")
		}
		for i, pattern := range c.Files {
			if pattern == "" {
				add(fmt.Sprintf("files[%d]", i), "must not be empty")
			}
		}
	}

	return violations
}
