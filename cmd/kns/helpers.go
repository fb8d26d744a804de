package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// resolveConfigPath returns the config file to use. Priority:
// 1. Explicit --config flag (non-empty)
// 2. <kns-dir>/config.yaml (if it exists)
// 3. kns.yaml
func resolveConfigPath(explicit, knsDirPath string) string {
	if explicit != "" {
		return explicit
	}

	knsConfig := filepath.Join(knsDirPath, "config.yaml")
	if _, err := os.Stat(knsConfig); err == nil {
		return knsConfig
	}

	return "kns.yaml"
}
