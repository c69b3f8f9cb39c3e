// Package discovery scans workspace directories for prompt and variable
// files and groups them into named prompt sets by the {role}-{name}
// convention.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kayz/promptforge/internal/workspace"
)

// PromptFile is one discovered prompt file. Role is empty when the filename
// does not carry a recognized role prefix.
type PromptFile struct {
	Path     string // relative to the prompt directory, slash-separated
	Role     string
	Name     string
	FullName string // filename stem, e.g. "system-evaluator"
}

// VarFile is one discovered variable configuration file.
type VarFile struct {
	Path string
	Name string
}

// PromptSet groups the prompt files that share a name, one entry per role,
// matched to the variable file of the same name when present. Orphan marks
// sets whose files don't fit the naming convention or that have no matching
// variable file.
type PromptSet struct {
	Name    string
	VarFile *VarFile
	Prompts map[string]PromptFile // role -> file
	Orphan  bool
}

// DuplicateError reports two files claiming the same (name, role) pair.
// Discovery refuses to pick a winner silently.
type DuplicateError struct {
	Name   string
	Role   string
	First  string
	Second string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate prompt for set %q role %q: %s and %s", e.Name, e.Role, e.First, e.Second)
}

// ScanPrompts walks the prompt directory and parses filenames against the
// naming convention. Files without a recognized role prefix are kept with an
// empty role so the matcher can flag them.
func ScanPrompts(dir, ext string, roles []string) ([]PromptFile, error) {
	entries, err := scanFiles(dir, []string{ext})
	if err != nil {
		return nil, err
	}

	files := make([]PromptFile, 0, len(entries))
	for _, rel := range entries {
		stem := strings.TrimSuffix(filepath.Base(rel), ext)
		role, name := parseStem(stem, roles)
		files = append(files, PromptFile{
			Path:     rel,
			Role:     role,
			Name:     name,
			FullName: stem,
		})
	}
	return files, nil
}

// ScanVars walks the vars directory for variable configuration files. The
// configured extension plus the .yml and legacy .vars spellings are
// accepted; the first file found for a name wins.
func ScanVars(dir, ext string) ([]VarFile, error) {
	exts := []string{ext}
	for _, extra := range []string{".yml", ".vars"} {
		if extra != ext {
			exts = append(exts, extra)
		}
	}
	entries, err := scanFiles(dir, exts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []VarFile
	for _, rel := range entries {
		name := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		files = append(files, VarFile{Path: rel, Name: name})
	}
	return files, nil
}

// Match groups prompt files by name, attaches variable files, and flags
// orphans. Two files claiming the same (name, role) pair are an error.
func Match(prompts []PromptFile, vars []VarFile) ([]PromptSet, error) {
	varsByName := make(map[string]VarFile, len(vars))
	for _, vf := range vars {
		varsByName[vf.Name] = vf
	}

	setsByName := make(map[string]*PromptSet)
	var order []string
	var sets []PromptSet

	for _, pf := range prompts {
		if pf.Role == "" {
			// Does not fit the role-name convention: its own orphan set.
			sets = append(sets, PromptSet{
				Name:    pf.FullName,
				Prompts: map[string]PromptFile{"unknown": pf},
				Orphan:  true,
			})
			continue
		}

		set, ok := setsByName[pf.Name]
		if !ok {
			set = &PromptSet{Name: pf.Name, Prompts: map[string]PromptFile{}}
			setsByName[pf.Name] = set
			order = append(order, pf.Name)
		}
		if existing, dup := set.Prompts[pf.Role]; dup {
			return nil, &DuplicateError{Name: pf.Name, Role: pf.Role, First: existing.Path, Second: pf.Path}
		}
		set.Prompts[pf.Role] = pf
	}

	for _, name := range order {
		set := setsByName[name]
		if vf, ok := varsByName[name]; ok {
			copied := vf
			set.VarFile = &copied
		} else {
			set.Orphan = true
		}
		sets = append(sets, *set)
	}

	// Matched sets first, then orphans, each bucket sorted by name.
	sort.SliceStable(sets, func(i, j int) bool {
		if sets[i].Orphan != sets[j].Orphan {
			return !sets[i].Orphan
		}
		return sets[i].Name < sets[j].Name
	})
	return sets, nil
}

// Discover runs the full scan-and-match pass for a workspace and returns the
// prompt sets plus human-readable warnings about orphans.
func Discover(root string, cfg *workspace.Config) ([]PromptSet, []string, error) {
	prompts, err := ScanPrompts(cfg.PromptDir(root), cfg.Layout.PromptExtension, cfg.Template.Naming.Roles)
	if err != nil {
		return nil, nil, fmt.Errorf("scan prompts: %w", err)
	}
	vars, err := ScanVars(cfg.VarsDir(root), cfg.Layout.VarsExtension)
	if err != nil {
		return nil, nil, fmt.Errorf("scan vars: %w", err)
	}

	sets, err := Match(prompts, vars)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	if cfg.Template.Matching.WarnOrphans {
		for _, set := range sets {
			if set.Orphan {
				warnings = append(warnings, fmt.Sprintf("orphaned prompt set %q (no matching variable file)", set.Name))
			}
		}
	}
	return sets, warnings, nil
}

func parseStem(stem string, roles []string) (role, name string) {
	parts := strings.SplitN(stem, "-", 2)
	if len(parts) == 2 {
		for _, r := range roles {
			if parts[0] == r {
				return parts[0], parts[1]
			}
		}
	}
	return "", stem
}

func scanFiles(dir string, exts []string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		for _, ext := range exts {
			if strings.HasSuffix(d.Name(), ext) {
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				out = append(out, filepath.ToSlash(rel))
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
