package config

import "time"

// Config is the top-level mongoagent configuration.
type Config struct {
	LLM         LLMConfig         `json:"llm"`
	Mongo       MongoConfig       `json:"mongo"`
	Agent       AgentConfig       `json:"agent"`
	Server      ServerConfig      `json:"server"`
	Log         LogConfig         `json:"log"`
	Transcripts TranscriptsConfig `json:"transcripts"`
	Audit       AuditConfig       `json:"audit"`
}

// LLMConfig selects the model backend.
type LLMConfig struct {
	// Provider is "gemini", "anthropic" or "copilot".
	Provider        string `json:"provider"`
	Model           string `json:"model,omitempty"`
	APIKey          string `json:"api_key,omitempty"`
	MaxOutputTokens int    `json:"max_output_tokens"`
}

// MongoConfig controls how mongosh is invoked.
type MongoConfig struct {
	URI     string `json:"uri,omitempty"`
	Binary  string `json:"binary"`
	Shell   string `json:"shell"`
	Timeout string `json:"timeout"`
}

// ParseTimeout returns the per-command timeout, or zero for none.
func (m MongoConfig) ParseTimeout() time.Duration {
	if m.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// AgentConfig tunes the conversation loop.
type AgentConfig struct {
	MaxIterations int  `json:"max_iterations"`
	InferLabels   bool `json:"infer_labels"`
	// Database is mentioned to the model as the default database.
	Database string `json:"database,omitempty"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// RateLimit is the sustained chat requests per second across all
	// sessions; zero disables limiting.
	RateLimit float64 `json:"rate_limit"`
	Burst     int     `json:"burst"`
}

// LogConfig controls the debug trace file.
type LogConfig struct {
	TraceFile    string `json:"trace_file"`
	ResetOnStart *bool  `json:"reset_on_start"`
}

// IsResetOnStart reports whether the trace is cleared when the process
// starts. Defaults to true when not explicitly set.
func (l LogConfig) IsResetOnStart() bool {
	if l.ResetOnStart == nil {
		return true
	}
	return *l.ResetOnStart
}

// TranscriptsConfig controls the markdown transcript archive.
type TranscriptsConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`
}

// AuditConfig controls the SQLite audit trail of executed commands.
type AuditConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

func boolPtr(b bool) *bool {
	return &b
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:        "gemini",
			MaxOutputTokens: 1024,
		},
		Mongo: MongoConfig{
			Binary:  "mongosh",
			Shell:   "sh",
			Timeout: "2m",
		},
		Agent: AgentConfig{
			MaxIterations: 10,
		},
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      8000,
			RateLimit: 5,
			Burst:     10,
		},
		Log: LogConfig{
			TraceFile:    "mongo_agent.log",
			ResetOnStart: boolPtr(true),
		},
		Transcripts: TranscriptsConfig{
			Enabled: true,
			Dir:     "~/.local/share/mongoagent/transcripts",
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    "~/.local/share/mongoagent/audit.db",
		},
	}
}
