// Package chain loads multi-step prompt chains and executes them
// sequentially, feeding each step's captured output into the variable
// namespace of later steps.
package chain

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kayz/promptforge/internal/template"
	"gopkg.in/yaml.v3"
)

// TemplateRef points a step role at its template: either a file path
// relative to the workspace root or inline text. Exactly one must be set.
type TemplateRef struct {
	Path string `yaml:"path,omitempty"`
	Text string `yaml:"text,omitempty"`
}

// Load returns the template text, reading path-backed refs at call time.
func (r TemplateRef) Load(workspaceRoot string) (string, error) {
	switch {
	case r.Path != "" && r.Text != "":
		return "", fmt.Errorf("template ref has both path and text")
	case r.Path != "":
		data, err := os.ReadFile(filepath.Join(workspaceRoot, filepath.FromSlash(r.Path)))
		if err != nil {
			return "", fmt.Errorf("read template %s: %w", r.Path, err)
		}
		return string(data), nil
	case r.Text != "":
		return r.Text, nil
	default:
		return "", fmt.Errorf("template ref has neither path nor text")
	}
}

// Step is one interpolation + completion stage of a chain.
type Step struct {
	Name      string                        `yaml:"name"`
	Templates map[string]TemplateRef        `yaml:"templates"`
	Variables map[string]template.VarConfig `yaml:"variables,omitempty"`
	OutputVar string                        `yaml:"output_var,omitempty"`

	// Per-step model parameter overrides; unset fields fall through to the
	// chain defaults, then to the runner defaults.
	Provider    string   `yaml:"provider,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Temperature *float32 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"max_tokens,omitempty"`
}

// Defaults holds chain-level model parameter overrides.
type Defaults struct {
	Provider    string   `yaml:"provider,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Temperature *float32 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"max_tokens,omitempty"`
}

// Chain is an ordered sequence of steps sharing an accumulating output
// context. Ordering is the declared sequence; no dependency reordering
// happens.
type Chain struct {
	Name        string                        `yaml:"name"`
	Description string                        `yaml:"description,omitempty"`
	Variables   map[string]template.VarConfig `yaml:"variables,omitempty"`
	Defaults    Defaults                      `yaml:"defaults,omitempty"`
	Steps       []Step                        `yaml:"steps"`
	Source      string                        `yaml:"-"` // file path, set on load
}

// Validate checks structural invariants before a run.
func (c *Chain) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("chain has no name")
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("chain %q has no steps", c.Name)
	}

	seen := make(map[string]struct{}, len(c.Steps))
	for i, step := range c.Steps {
		if step.Name == "" {
			return fmt.Errorf("chain %q step %d has no name", c.Name, i+1)
		}
		if _, dup := seen[step.Name]; dup {
			return fmt.Errorf("chain %q has duplicate step name %q", c.Name, step.Name)
		}
		seen[step.Name] = struct{}{}
		if len(step.Templates) == 0 {
			return fmt.Errorf("chain %q step %q has no templates", c.Name, step.Name)
		}
		for role, ref := range step.Templates {
			if (ref.Path == "") == (ref.Text == "") {
				return fmt.Errorf("chain %q step %q role %q: exactly one of path or text is required", c.Name, step.Name, role)
			}
		}
	}
	return nil
}

// Output returns the context key a step's response is captured under.
func (s Step) Output() string {
	if s.OutputVar != "" {
		return s.OutputVar
	}
	return s.Name
}

// LoadChain reads one chain definition file.
func LoadChain(path string) (*Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chain: %w", err)
	}

	var c Chain
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse chain %s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	c.Source = path

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadChains reads every chain definition in a directory, sorted by name.
func LoadChains(dir string) ([]*Chain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chains directory: %w", err)
	}

	var chains []*Chain
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		c, err := LoadChain(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		chains = append(chains, c)
	}

	sort.Slice(chains, func(i, j int) bool { return chains[i].Name < chains[j].Name })
	return chains, nil
}

// FindChain loads the chain with the given name from a directory.
func FindChain(dir, name string) (*Chain, error) {
	chains, err := LoadChains(dir)
	if err != nil {
		return nil, err
	}
	for _, c := range chains {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("chain %q not found in %s", name, dir)
}
