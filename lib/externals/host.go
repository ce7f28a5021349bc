package externals

import (
	"fmt"
	"maps"
	"slices"

	"github.com/evanw/esbuild/pkg/api"
)

// Host is the build a Plugin attaches to.
type Host interface {
	Externals() Externals
	SetExternals(Externals)
	// PublicPath is the URL prefix the host serves its output from.
	PublicPath() string
	AddPlugin(api.Plugin)
}

// Externals is the host's externals setting. It is nil when unset, or one
// of ExternalsList and ExternalsMapping.
type Externals interface {
	isExternals()
}

// ExternalsItem is one element of an ExternalsList: either a bare module
// name or a mapping of modules to globals.
type ExternalsItem struct {
	Module  string
	Mapping Mapping
}

type ExternalsList []ExternalsItem

type ExternalsMapping Mapping

func (ExternalsList) isExternals()    {}
func (ExternalsMapping) isExternals() {}

// MergeExternals folds m into the host's current externals setting:
// an unset setting becomes m, a list gains m as one more element and a
// mapping is shallow-merged with m winning on conflicts.
func MergeExternals(current Externals, m Mapping) Externals {
	switch cur := current.(type) {
	case nil:
		return ExternalsMapping(m.clone())
	case ExternalsList:
		out := slices.Clone(cur)
		return append(out, ExternalsItem{Mapping: m.clone()})
	case ExternalsMapping:
		out := ExternalsMapping(Mapping(cur).clone())
		maps.Copy(out, m)
		return out
	default:
		panic(fmt.Sprintf("unexpected externals type %T", current))
	}
}

// ParseExternals decodes a host externals setting from a config document:
// nil, a list of module names and mappings, or a single mapping.
func ParseExternals(raw any) (Externals, error) {
	switch value := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		list := make(ExternalsList, 0, len(value))
		for i, item := range value {
			switch item := item.(type) {
			case string:
				list = append(list, ExternalsItem{Module: item})
			case map[string]any:
				m, err := parseMapping(item)
				if err != nil {
					return nil, fmt.Errorf("externals[%d]: %w", i, err)
				}
				list = append(list, ExternalsItem{Mapping: m})
			default:
				return nil, fmt.Errorf("externals[%d]: expected a module name or a mapping, got %T", i, item)
			}
		}
		return list, nil
	case map[string]any:
		m, err := parseMapping(value)
		if err != nil {
			return nil, fmt.Errorf("externals: %w", err)
		}
		return ExternalsMapping(m), nil
	default:
		return nil, fmt.Errorf("externals: expected a list or a mapping, got %T", raw)
	}
}

func parseMapping(raw map[string]any) (Mapping, error) {
	m := make(Mapping, len(raw))
	for module, global := range raw {
		switch global := global.(type) {
		case nil:
			m[module] = ""
		case string:
			m[module] = global
		default:
			return nil, fmt.Errorf("global for %q must be a string, got %T", module, global)
		}
	}
	return m, nil
}
