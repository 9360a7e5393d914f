package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/coursekeeper/internal/flagx"
	"github.com/dmitrijs2005/coursekeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	BackendURL     string         `json:"backend_url"`
	AccessToken    string         `json:"access_token"`
	CourseID       string         `json:"course_id"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LedgerDSN      *string        `json:"ledger_dsn"`
	LogLevel       string         `json:"log_level"`
	LogFormat      string         `json:"log_format"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.AccessToken, jc.AccessToken)
	setString(&cfg.CourseID, jc.CourseID)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	// an explicit "" switches the ledger to memory
	if jc.LedgerDSN != nil {
		cfg.LedgerDSN = *jc.LedgerDSN
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
