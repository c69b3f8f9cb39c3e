package template

import "fmt"

// VarSpec is a variable specification: either an inline literal value or a
// reference to a file under the workspace root. The interface is sealed so
// the set of variants is closed; every switch over it must handle both and
// reject anything else.
type VarSpec interface {
	varSpec()
}

// ValueSpec holds a literal value stored inline.
type ValueSpec struct {
	Value string
}

// FileSpec references a file path relative to the workspace root. Content is
// read at resolution time, never cached, so external edits are picked up.
type FileSpec struct {
	Path string
}

func (ValueSpec) varSpec() {}
func (FileSpec) varSpec()  {}

// Namespace maps identifiers to variable specifications for one
// interpolation pass. Lookup is by exact, case-sensitive identifier.
type Namespace map[string]VarSpec

// Merge returns a copy of ns with overrides applied on top.
func (ns Namespace) Merge(overrides Namespace) Namespace {
	merged := make(Namespace, len(ns)+len(overrides))
	for name, spec := range ns {
		merged[name] = spec
	}
	for name, spec := range overrides {
		merged[name] = spec
	}
	return merged
}

// VarConfig is the YAML shape of a variable entry in workspace and chain
// configuration files:
//
//	code_to_evaluate:
//	  type: file
//	  path: examples/fibonacci.py
//	hint:
//	  type: value
//	  value: "prefer iterative solutions"
type VarConfig struct {
	Type        string `yaml:"type"`
	Path        string `yaml:"path,omitempty"`
	Value       string `yaml:"value,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Spec converts the YAML entry into a VarSpec.
func (c VarConfig) Spec() (VarSpec, error) {
	switch c.Type {
	case "file":
		if c.Path == "" {
			return nil, fmt.Errorf("'path' is required when type is 'file'")
		}
		return FileSpec{Path: c.Path}, nil
	case "value":
		return ValueSpec{Value: c.Value}, nil
	default:
		return nil, fmt.Errorf("unknown variable type %q (want 'file' or 'value')", c.Type)
	}
}

// BuildNamespace converts a map of YAML variable entries into a Namespace.
// The returned error names the first offending variable.
func BuildNamespace(vars map[string]VarConfig) (Namespace, error) {
	ns := make(Namespace, len(vars))
	for name, cfg := range vars {
		spec, err := cfg.Spec()
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		ns[name] = spec
	}
	return ns, nil
}
