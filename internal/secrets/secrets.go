// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves provider API keys. A key comes from a file named
// "<provider>-api-key" in the secrets directory (groq-api-key,
// openai-api-key, anthropic-api-key, gemini-api-key, deepseek-api-key) or,
// failing that, from the <PROVIDER>_API_KEY environment variable.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const keySuffix = "-api-key"

// Keys maps key file names to their trimmed contents.
type Keys map[string]string

// Load collects the key files in dir. Other files, dotfiles and
// subdirectories are ignored, as are empty keys. A missing dir yields an
// empty set. A key file that cannot be read is logged and left out.
func Load(dir string) (Keys, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Keys{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	keys := Keys{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, keySuffix) {
			continue
		}
		value, err := readKey(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("skipping unreadable key file", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		if value != "" {
			keys[name] = value
		}
	}
	return keys, nil
}

func readKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Names returns the loaded key file names, sorted. Values are never
// exposed so the result is safe to log.
func (k Keys) Names() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// APIKey resolves the key of provider. The key file wins over the
// environment; "" means neither is set.
func (k Keys) APIKey(provider string) string {
	if v := k[KeyFile(provider)]; v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(EnvVar(provider)))
}

// KeyFile returns the key file name of provider.
func KeyFile(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider)) + keySuffix
}

// EnvVar returns the environment variable of provider, e.g. GROQ_API_KEY.
func EnvVar(provider string) string {
	return strings.ToUpper(strings.TrimSpace(provider)) + "_API_KEY"
}
