// Package export writes generated scripts to disk.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/logger"
)

const (
	maxSlugLen   = 40
	idPrefixLen  = 8
	readmeName   = "README.md"
	fallbackSlug = "scripts"
)

// DirName returns the directory name scripts for prompt and artifactID are
// written under, e.g. "monthly-sales-summary-p1a2b3c4".
func DirName(prompt, artifactID string) string {
	s := slug.Make(prompt)
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	if s == "" {
		s = fallbackSlug
	}

	id := slug.Make(artifactID)
	if len(id) > idPrefixLen {
		id = id[:idPrefixLen]
	}
	if id == "" {
		return s
	}
	return s + "-" + id
}

// WriteScripts writes every script of result into a fresh directory under
// dir and returns that directory. Server-supplied filenames are reduced to
// their base name so nothing is written outside it. Setup instructions and
// dependencies, when present, go into a README.md.
func WriteScripts(dir string, result *api.GenerationResult, prompt string) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no generation result to export")
	}

	target := filepath.Join(dir, DirName(prompt, result.ArtifactID))
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	for i, s := range result.Scripts {
		name := safeName(s.Filename)
		if name == "" {
			name = fmt.Sprintf("script-%d.txt", i+1)
		}
		path := filepath.Join(target, name)
		logger.Debug("Writing script to %s", path)
		if err := os.WriteFile(path, []byte(s.Content), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if readme := readmeFor(result, prompt); readme != "" {
		if err := os.WriteFile(filepath.Join(target, readmeName), []byte(readme), 0644); err != nil {
			return "", fmt.Errorf("failed to write README: %w", err)
		}
	}

	logger.Info("Exported %d scripts to %s", len(result.Scripts), target)
	return target, nil
}

func safeName(name string) string {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	switch base {
	case "/", ".", "..":
		return ""
	}
	return base
}

func readmeFor(result *api.GenerationResult, prompt string) string {
	if result.SetupInstructions == "" && len(result.Dependencies) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Generated scripts\n\n")
	if p := strings.TrimSpace(prompt); p != "" {
		fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(p, "\n", "\n> "))
	}
	if len(result.Dependencies) > 0 {
		b.WriteString("## Dependencies\n\n")
		for _, d := range result.Dependencies {
			fmt.Fprintf(&b, "- %s\n", d)
		}
		b.WriteString("\n")
	}
	if result.SetupInstructions != "" {
		b.WriteString("## Setup\n\n")
		b.WriteString(strings.TrimSpace(result.SetupInstructions))
		b.WriteString("\n")
	}
	return b.String()
}
