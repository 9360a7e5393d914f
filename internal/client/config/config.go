package config

import "time"

// StateDir is the working-directory folder that holds the CLI's local state.
const StateDir = ".coursekeeper"

// Config holds runtime settings for the coursekeeper authoring CLI.
//
// Fields:
//   - BackendURL: base URL of the curriculum REST API.
//   - AccessToken: bearer token; the CLI prompts for it when empty.
//   - CourseID: backend id of the course being edited.
//   - RequestTimeout: per-request HTTP timeout.
//   - LedgerDSN: sqlite DSN of the upload ledger; empty keeps it in memory.
//   - LogLevel, LogFormat: see logging.New.
type Config struct {
	BackendURL     string
	AccessToken    string
	CourseID       string
	RequestTimeout time.Duration
	LedgerDSN      string
	LogLevel       string
	LogFormat      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8080/api/v1"
	c.RequestTimeout = 30 * time.Second
	c.LedgerDSN = "file:" + StateDir + "/uploads.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
