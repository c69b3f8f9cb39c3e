package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListPromptFiles lists prompt files under the workspace prompt directory,
// nested directories included, hidden files and directories skipped. Paths
// are returned slash-separated relative to the prompt directory, root-level
// files first.
func ListPromptFiles(root string, cfg *Config) ([]string, error) {
	base := cfg.PromptDir(root)
	if _, err := os.Stat(base); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat prompt directory: %w", err)
	}

	var files []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan prompt directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		di, dj := 0, 0
		if strings.Contains(files[i], "/") {
			di = 1
		}
		if strings.Contains(files[j], "/") {
			dj = 1
		}
		if di != dj {
			return di < dj
		}
		return files[i] < files[j]
	})
	return files, nil
}

// LoadPromptFile reads one prompt file relative to the prompt directory.
func LoadPromptFile(root string, cfg *Config, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	data, err := os.ReadFile(filepath.Join(cfg.PromptDir(root), filepath.FromSlash(filename)))
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return string(data), nil
}

// SavePromptFile writes one prompt file relative to the prompt directory,
// creating parent directories for nested files.
func SavePromptFile(root string, cfg *Config, filename, content string) error {
	if filename == "" {
		return fmt.Errorf("filename is required")
	}
	path := filepath.Join(cfg.PromptDir(root), filepath.FromSlash(filename))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write prompt file: %w", err)
	}
	return nil
}
