package workspace

import (
	"fmt"
	"os"

	"github.com/kayz/promptforge/internal/template"
	"gopkg.in/yaml.v3"
)

// LoadVarsFile reads a variable configuration file. Entries are either the
// full mapping form (type/path/value) or a bare scalar, which is shorthand
// for an inline value:
//
//	code:
//	  type: file
//	  path: examples/fib.py
//	language: python
func LoadVarsFile(path string) (map[string]template.VarConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vars file: %w", err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse vars file %s: %w", path, err)
	}

	vars := make(map[string]template.VarConfig, len(raw))
	for name, node := range raw {
		switch node.Kind {
		case yaml.ScalarNode:
			vars[name] = template.VarConfig{Type: "value", Value: node.Value}
		case yaml.MappingNode:
			var vc template.VarConfig
			if err := node.Decode(&vc); err != nil {
				return nil, fmt.Errorf("vars file %s: variable %q: %w", path, name, err)
			}
			vars[name] = vc
		default:
			return nil, fmt.Errorf("vars file %s: variable %q: expected scalar or mapping", path, name)
		}
	}
	return vars, nil
}

// SaveVarsFile writes a variable configuration file.
func SaveVarsFile(path string, vars map[string]template.VarConfig) error {
	data, err := yaml.Marshal(vars)
	if err != nil {
		return fmt.Errorf("marshal vars: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write vars file: %w", err)
	}
	return nil
}
