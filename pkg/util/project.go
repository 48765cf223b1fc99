package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateProjectPath cleans projectPath, checks that it is a directory and
// returns it as an absolute path
func ValidateProjectPath(projectPath string) (string, error) {
	projectPath = filepath.Clean(projectPath)

	info, err := os.Stat(projectPath)
	if err != nil {
		return "", fmt.Errorf("cannot access path '%s': %w", projectPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path '%s' is not a directory", projectPath)
	}

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return projectPath, nil
	}
	return absPath, nil
}

// ResolveSolutionDir returns sampleDir/solutionDir when that directory
// exists and sampleDir itself otherwise. Both results are validated.
func ResolveSolutionDir(sampleDir, solutionDir string) (string, error) {
	sample, err := ValidateProjectPath(sampleDir)
	if err != nil {
		return "", err
	}
	if solutionDir == "" {
		return sample, nil
	}

	candidate := filepath.Join(sample, solutionDir)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate, nil
	}
	return sample, nil
}
