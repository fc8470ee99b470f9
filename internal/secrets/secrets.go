// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials that notebooks need from a directory of
// plain-text files. Each file in the directory represents one secret: the
// filename is the key name and the file contents (trimmed) are the value.
// Secrets reach the notebook kernel as environment variables.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "err", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Env converts secrets to sorted KEY=VALUE pairs. Keys are upper-cased and
// any character outside [A-Z0-9_] becomes an underscore, so
// "openai-api-key" is exported as OPENAI_API_KEY.
func Env(secrets map[string]string) []string {
	env := make([]string, 0, len(secrets))
	for k, v := range secrets {
		env = append(env, EnvName(k)+"="+v)
	}
	sort.Strings(env)
	return env
}

// EnvName returns the environment variable name for a secret file name.
func EnvName(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
