// Package prompts holds the agent's system prompt. The embedded template can
// be replaced per user by a file with the same name under
// <config dir>/mongoagent/prompts/.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// SystemPromptName is the template rendered into the agent's instructions.
const SystemPromptName = "system.md"

//go:embed *.md
var builtinFS embed.FS

// SystemData fills the system prompt template.
type SystemData struct {
	MaxIterations     int
	DangerousKeywords []string
	Database          string
}

// OverrideDir returns the directory searched for user templates.
func OverrideDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "mongoagent", "prompts")
}

// Load returns the named template, preferring a user override.
func Load(name string) (*template.Template, error) {
	if dir := OverrideDir(); dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
			return template.New(name).Parse(string(data))
		}
	}

	data, err := builtinFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("loading prompt template %s: %w", name, err)
	}
	return template.New(name).Parse(string(data))
}

// Execute renders the named template with data.
func Execute(name string, data any) (string, error) {
	tmpl, err := Load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}

// System renders the agent's system prompt.
func System(data SystemData) (string, error) {
	return Execute(SystemPromptName, struct {
		MaxIterations     int
		DangerousKeywords string
		Database          string
	}{
		MaxIterations:     data.MaxIterations,
		DangerousKeywords: strings.Join(data.DangerousKeywords, ", "),
		Database:          data.Database,
	})
}

// List returns the names of the embedded templates.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
