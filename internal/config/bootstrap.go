package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnsureUserConfig makes sure a user config file exists in dataDir and
// returns its path. First run copies the shipped default file, or writes the
// built-in defaults when no default file ships alongside the binary.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		b, err := yaml.Marshal(Default())
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(userPath, b, 0o644); err != nil {
			return "", err
		}
		return userPath, nil
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
