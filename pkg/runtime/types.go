package runtime

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Language identifies the ecosystem a project is written in
type Language string

const (
	LanguagePython     Language = "python"
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguageGo         Language = "go"
	LanguageUnknown    Language = ""
)

// Framework identifies the test framework a project uses
type Framework string

const (
	FrameworkPytest  Framework = "pytest"
	FrameworkJest    Framework = "jest"
	FrameworkVitest  Framework = "vitest"
	FrameworkMocha   Framework = "mocha"
	FrameworkGoTest  Framework = "gotest"
	FrameworkUnknown Framework = ""
)

// Toolchain lists the host binaries a language needs for install and test runs
type Toolchain struct {
	Language Language
	// Binaries are alternatives per slot: the slot is satisfied when any
	// alternative is on PATH.
	Binaries [][]string
	// ArtifactDirs are directories an install leaves behind in the project
	ArtifactDirs []string
}

// GetToolchain returns the toolchain description for a language
func GetToolchain(lang Language) Toolchain {
	switch lang {
	case LanguagePython:
		return Toolchain{
			Language:     LanguagePython,
			Binaries:     [][]string{{"python3", "python"}},
			ArtifactDirs: []string{".venv", ".pytest_cache"},
		}
	case LanguageTypeScript, LanguageJavaScript:
		return Toolchain{
			Language:     lang,
			Binaries:     [][]string{{"node"}, {"npm", "yarn", "pnpm", "bun"}, {"npx"}},
			ArtifactDirs: []string{"node_modules"},
		}
	case LanguageGo:
		return Toolchain{
			Language: LanguageGo,
			Binaries: [][]string{{"go"}},
		}
	default:
		return Toolchain{Language: LanguageUnknown}
	}
}

// MissingTools reports the toolchain slots with no binary on PATH.
// Each entry is the slot's alternatives joined with "|".
func MissingTools(lang Language) []string {
	var missing []string
	for _, slot := range GetToolchain(lang).Binaries {
		if !anyOnPath(slot) {
			missing = append(missing, strings.Join(slot, "|"))
		}
	}
	return missing
}

// PresentArtifacts returns the install artifact directories of lang that
// already exist in dir
func PresentArtifacts(lang Language, dir string) []string {
	var present []string
	for _, name := range GetToolchain(lang).ArtifactDirs {
		if fi, err := os.Stat(filepath.Join(dir, name)); err == nil && fi.IsDir() {
			present = append(present, name)
		}
	}
	return present
}

// FirstOnPath returns the first binary found on PATH, or fallback
func FirstOnPath(fallback string, names ...string) string {
	for _, name := range names {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return fallback
}

func anyOnPath(names []string) bool {
	for _, name := range names {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
