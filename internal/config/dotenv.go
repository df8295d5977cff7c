package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"parish-app-go/pkg/logger"
)

const dotenvFilename = ".env"

// loadDotEnv fills the environment from ENV_FILE when it is set, otherwise
// from the nearest .env.<ENV> and .env found walking up from the working
// directory. Variables already present in the process always win.
func loadDotEnv(log logger.Logger) error {
	paths, err := dotEnvPaths()
	if err != nil {
		return err
	}

	for _, path := range paths {
		loaded, skipped, err := applyDotEnv(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		log.Info("dotenv: loaded variables", "count", loaded, "skipped", skipped, "path", path)
	}
	return nil
}

func dotEnvPaths() ([]string, error) {
	if explicit := os.Getenv("ENV_FILE"); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("ENV_FILE: %w", err)
		}
		return []string{explicit}, nil
	}

	var paths []string
	names := []string{dotenvFilename}
	if env := normalizeEnv(os.Getenv("ENV")); env != "" {
		names = []string{dotenvFilename + "." + env, dotenvFilename}
	}
	for _, name := range names {
		path, err := findUpwards(name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func findUpwards(filename string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// applyDotEnv sets every variable from path that is not already present in
// the process environment.
func applyDotEnv(path string) (loaded int, skipped int, err error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return 0, 0, err
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, exists := os.LookupEnv(key); exists {
			skipped++
			continue
		}
		if err := os.Setenv(key, values[key]); err != nil {
			return loaded, skipped, err
		}
		loaded++
	}
	return loaded, skipped, nil
}
