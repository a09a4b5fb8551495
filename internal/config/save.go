package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	_, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		return errors.New("config validation failed:\n- " + strings.Join(res.Errors, "\n- "))
	}
	return nil
}

// SaveAtomic validates and writes the config via tmp + bak + rename so a
// crash mid-write never leaves a torn file.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
