// Package workspace manages per-project configuration and prompt file
// layout rooted at a workspace directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kayz/promptforge/internal/template"
	"gopkg.in/yaml.v3"
)

// Layout describes where prompts, variable files, and chains live inside the
// workspace, all relative to the workspace root.
type Layout struct {
	PromptDir       string `yaml:"prompt_dir"`
	VarsDir         string `yaml:"vars_dir"`
	ChainsDir       string `yaml:"chains_dir,omitempty"`
	PromptExtension string `yaml:"prompt_extension"`
	VarsExtension   string `yaml:"vars_extension"`
}

// Naming holds the file naming conventions for prompt discovery.
type Naming struct {
	Pattern    string   `yaml:"pattern"`
	Roles      []string `yaml:"roles"`
	VarPattern string   `yaml:"var_pattern"`
}

// Matching controls auto-matching behavior during discovery.
type Matching struct {
	AutoMatch     bool `yaml:"auto_match"`
	AllowOverride bool `yaml:"allow_override"`
	WarnOrphans   bool `yaml:"warn_orphans"`
}

// TemplateConfig groups template syntax settings.
type TemplateConfig struct {
	Delimiters template.Delimiters `yaml:"variable_delimiters"`
	Naming     Naming              `yaml:"naming"`
	Matching   Matching            `yaml:"matching"`
}

// Defaults holds workspace-level model parameter overrides. Zero values mean
// "fall through to the user config".
type Defaults struct {
	Provider    string   `yaml:"provider,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"max_tokens,omitempty"`
}

// Schedule declares a recurring chain run.
type Schedule struct {
	Name     string `yaml:"name"`
	Chain    string `yaml:"chain"`
	Cron     string `yaml:"cron"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// Settings holds editor-facing workspace behavior flags.
type Settings struct {
	AutoReload      bool `yaml:"auto_reload"`
	AutoExtractVars bool `yaml:"auto_extract_vars"`
	AutoSave        bool `yaml:"auto_save"`
}

// Config is the content of <root>/.promptforge/workspace.yaml.
type Config struct {
	Name      string                        `yaml:"name"`
	Version   string                        `yaml:"version"`
	Layout    Layout                        `yaml:"layout"`
	Template  TemplateConfig                `yaml:"template"`
	Defaults  Defaults                      `yaml:"defaults"`
	Variables map[string]template.VarConfig `yaml:"variables,omitempty"`
	Settings  Settings                      `yaml:"settings"`
	Schedules []Schedule                    `yaml:"schedules,omitempty"`
}

// ConfigPath returns the workspace config file path for a root.
func ConfigPath(root string) string {
	return filepath.Join(root, ".promptforge", "workspace.yaml")
}

// DefaultConfig returns a fresh workspace configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "My Workspace",
		Version: "1.0",
		Layout: Layout{
			PromptDir:       "prompts",
			VarsDir:         "prompts/vars",
			PromptExtension: ".txt",
			VarsExtension:   ".yaml",
		},
		Template: TemplateConfig{
			Delimiters: template.DefaultDelimiters(),
			Naming: Naming{
				Pattern:    "{role}-{name}",
				Roles:      []string{"system", "user"},
				VarPattern: "{name}.yaml",
			},
			Matching: Matching{
				AutoMatch:     true,
				AllowOverride: true,
				WarnOrphans:   true,
			},
		},
		Settings: Settings{
			AutoReload:      true,
			AutoExtractVars: true,
		},
	}
}

// Load reads the workspace config for a root, falling back to defaults when
// no config file exists.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read workspace config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse workspace config: %w", err)
	}
	if cfg.Template.Delimiters.Start == "" || cfg.Template.Delimiters.End == "" {
		return nil, fmt.Errorf("workspace config: delimiters cannot be empty")
	}
	return cfg, nil
}

// Save writes the workspace config, creating .promptforge/ if needed.
func Save(root string, cfg *Config) error {
	path := ConfigPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create workspace config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal workspace config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write workspace config: %w", err)
	}
	return nil
}

// Namespace builds the variable namespace declared in the workspace config.
func (c *Config) Namespace() (template.Namespace, error) {
	return template.BuildNamespace(c.Variables)
}

// PromptDir returns the absolute prompt directory for a root.
func (c *Config) PromptDir(root string) string {
	return filepath.Join(root, c.Layout.PromptDir)
}

// VarsDir returns the absolute variable-file directory for a root.
func (c *Config) VarsDir(root string) string {
	return filepath.Join(root, c.Layout.VarsDir)
}

// ChainsDir returns the absolute chains directory for a root, or "" when
// chains are not configured.
func (c *Config) ChainsDir(root string) string {
	if c.Layout.ChainsDir == "" {
		return ""
	}
	return filepath.Join(root, c.Layout.ChainsDir)
}

// Validate checks the workspace config against the filesystem and returns a
// list of problems.
func Validate(root string, cfg *Config) []string {
	var problems []string

	if cfg.Layout.PromptDir == "" {
		problems = append(problems, "missing prompt directory path")
	} else if _, err := os.Stat(cfg.PromptDir(root)); err != nil {
		problems = append(problems, fmt.Sprintf("prompt directory not found: %s", cfg.Layout.PromptDir))
	}

	if cfg.Layout.VarsDir == "" {
		problems = append(problems, "missing vars directory path")
	} else if _, err := os.Stat(cfg.VarsDir(root)); err != nil {
		problems = append(problems, fmt.Sprintf("vars directory not found: %s", cfg.Layout.VarsDir))
	}

	if d := cfg.Template.Delimiters; d.Start == "" || d.End == "" {
		problems = append(problems, "delimiters cannot be empty")
	} else if d.Start == d.End {
		problems = append(problems, fmt.Sprintf("start and end delimiters must differ (both %q)", d.Start))
	}

	for name, vc := range cfg.Variables {
		spec, err := vc.Spec()
		if err != nil {
			problems = append(problems, fmt.Sprintf("variable %q: %v", name, err))
			continue
		}
		if fs, ok := spec.(template.FileSpec); ok {
			if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(fs.Path))); err != nil {
				problems = append(problems, fmt.Sprintf("variable %q: file not found: %s", name, fs.Path))
			}
		}
	}

	for i, s := range cfg.Schedules {
		if s.Chain == "" {
			problems = append(problems, fmt.Sprintf("schedule %d: missing chain name", i+1))
		}
		if s.Cron == "" {
			problems = append(problems, fmt.Sprintf("schedule %d: missing cron expression", i+1))
		}
	}

	return problems
}
