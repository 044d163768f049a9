package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetVersion reads the release tag from tag.txt, searching the current
// directory and then its parents.
func GetVersion() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current directory: %w", err)
	}

	for {
		tagPath := filepath.Join(dir, "tag.txt")
		if _, err := os.Stat(tagPath); err == nil {
			content, err := os.ReadFile(tagPath)
			if err != nil {
				return "", fmt.Errorf("read tag.txt: %w", err)
			}

			version := strings.TrimSpace(string(content))
			if version == "" {
				return "", fmt.Errorf("tag.txt is empty")
			}

			return version, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "unknown", nil
}

// GetVersionInfo returns the full human-readable version string.
func GetVersionInfo() string {
	version, err := GetVersion()
	if err != nil {
		return fmt.Sprintf("bbrtrace (version: unknown, error: %v)", err)
	}

	if len(version) > 0 && version[0] == 'v' {
		return fmt.Sprintf("bbrtrace %s", version)
	}

	return fmt.Sprintf("bbrtrace v%s", version)
}

// PrintVersion writes the version info to stdout.
func PrintVersion() {
	fmt.Println(GetVersionInfo())
}
