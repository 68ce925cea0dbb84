// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads lookup credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the trimmed
// contents are the value.
//
// Recognized keys: crossref-email, openalex-email.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Key names read from the secrets directory.
const (
	CrossrefEmail = "crossref-email"
	OpenAlexEmail = "openalex-email"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error and
// yields an empty set. Unreadable files are logged and skipped.
func Load(dir string, logger *slog.Logger) (Secrets, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
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
			logger.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ContactEmail returns the polite-pool contact for source, falling back to
// the other backend's address when only one is configured.
func (s Secrets) ContactEmail(source string) string {
	order := []string{CrossrefEmail, OpenAlexEmail}
	if source == "openalex" {
		order = []string{OpenAlexEmail, CrossrefEmail}
	}
	for _, k := range order {
		if v := s[k]; v != "" {
			return v
		}
	}
	return ""
}
