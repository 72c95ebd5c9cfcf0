// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Recognized keys: google-api-key, ncbi-api-key, semantic-scholar-api-key,
// database-url.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key names looked up by the CLI.
const (
	KeyGoogleAPI       = "google-api-key"
	KeyNCBI            = "ncbi-api-key"
	KeySemanticScholar = "semantic-scholar-api-key"
	KeyDatabaseURL     = "database-url"
)

// ErrMissingAPIKey is returned when no usable model credential is configured.
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY not configured")

// CheckAPIKey rejects an empty key and the "your_api_key_here" style
// placeholder shipped in example .env files.
func CheckAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(strings.ToLower(key), "your_api") {
		return ErrMissingAPIKey
	}
	return nil
}

// Secrets maps key names to values.
type Secrets map[string]string

// Get returns the value for key, or "" when absent.
func (s Secrets) Get(key string) string {
	return s[key]
}

// Or returns fallback when it is non-empty, otherwise the stored value for key.
// Explicit configuration always wins over a secret file.
func (s Secrets) Or(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return s[key]
}

// Keys returns the loaded key names without their values.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
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
			logger.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
