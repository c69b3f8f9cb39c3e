package workspace

import (
	"os"
	"path/filepath"
)

// ProjectType is the detected build system of the workspace.
type ProjectType string

const (
	ProjectMaven   ProjectType = "maven"
	ProjectGradle  ProjectType = "gradle"
	ProjectNodeJS  ProjectType = "nodejs"
	ProjectPython  ProjectType = "python"
	ProjectUnknown ProjectType = "unknown"
)

// DetectProjectType inspects marker files at the workspace root to guess the
// surrounding project type.
func DetectProjectType(root string) ProjectType {
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(root, name))
		return err == nil
	}

	switch {
	case exists("pom.xml"):
		return ProjectMaven
	case exists("build.gradle"), exists("build.gradle.kts"):
		return ProjectGradle
	case exists("package.json"):
		return ProjectNodeJS
	case exists("requirements.txt"), exists("pyproject.toml"), exists("setup.py"):
		return ProjectPython
	default:
		return ProjectUnknown
	}
}

// SuggestLayout proposes a workspace layout that matches the conventions of
// the detected project type.
func SuggestLayout(pt ProjectType) Layout {
	switch pt {
	case ProjectMaven, ProjectGradle:
		return Layout{
			PromptDir:       "src/main/resources/prompts",
			VarsDir:         "src/test/resources/prompts/vars",
			ChainsDir:       "src/test/resources/prompts/chains",
			PromptExtension: ".st",
			VarsExtension:   ".yaml",
		}
	case ProjectPython:
		return Layout{
			PromptDir:       "app/prompts",
			VarsDir:         "app/prompts/vars",
			ChainsDir:       "app/prompts/chains",
			PromptExtension: ".txt",
			VarsExtension:   ".yaml",
		}
	case ProjectNodeJS:
		return Layout{
			PromptDir:       "src/prompts",
			VarsDir:         "src/prompts/vars",
			ChainsDir:       "src/prompts/chains",
			PromptExtension: ".txt",
			VarsExtension:   ".yaml",
		}
	default:
		return Layout{
			PromptDir:       "prompts",
			VarsDir:         "prompts/vars",
			PromptExtension: ".txt",
			VarsExtension:   ".yaml",
		}
	}
}
