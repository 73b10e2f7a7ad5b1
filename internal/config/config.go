// Package config loads layered JSONC configuration for mongoagent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// ProjectPath is the project-level config file, relative to the working
// directory.
var ProjectPath = filepath.Join(".mongoagent", "mongoagent.jsonc")

// Load reads and merges configuration.
// Resolution order: defaults → user config (~/.config/mongoagent/mongoagent.jsonc)
// → project config (.mongoagent/mongoagent.jsonc) → overridePath, if given.
// Environment variables are applied last.
func Load(overridePath string) (*Config, error) {
	cfg := DefaultConfig()

	if userPath := UserPath(); userPath != "" {
		if userMap, err := loadJSONC(userPath); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if projectMap, err := loadJSONC(ProjectPath); err == nil {
		if err := mergeIntoConfig(&cfg, projectMap); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if overridePath != "" {
		overrideMap, err := loadJSONC(overridePath)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", overridePath, err)
		}
		if err := mergeIntoConfig(&cfg, overrideMap); err != nil {
			return nil, fmt.Errorf("merging config %s: %w", overridePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// UserPath returns the user-level config file location.
func UserPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mongoagent", "mongoagent.jsonc")
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig round-trips cfg through a map so src can be deep-merged
// over it key by key.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if provider := os.Getenv("MONGOAGENT_LLM_PROVIDER"); provider != "" {
		cfg.LLM.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("MONGOAGENT_LLM_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		case "anthropic":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Redacted returns a copy of cfg with secrets masked, for display.
func (c Config) Redacted() Config {
	out := c
	if out.LLM.APIKey != "" {
		out.LLM.APIKey = "********"
	}
	out.Mongo.URI = redactURI(out.Mongo.URI)
	return out
}

// redactURI masks the password in a mongodb:// connection string.
func redactURI(uri string) string {
	scheme := strings.Index(uri, "://")
	at := strings.LastIndex(uri, "@")
	if scheme < 0 || at < scheme {
		return uri
	}
	creds := uri[scheme+3 : at]
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return uri
	}
	return uri[:scheme+3] + user + ":********" + uri[at:]
}
