package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/coursekeeper/internal/flagx"
	"github.com/dmitrijs2005/coursekeeper/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddr    string         `json:"endpoint_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	MediaBaseURL    string         `json:"media_base_url"`
	MaxUploadMB     int64          `json:"max_upload_mb"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config (if any) and overlays every
// non-zero value onto config. Unreadable files and invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.MediaBaseURL, c.MediaBaseURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.MaxUploadMB > 0 {
		config.MaxUploadMB = c.MaxUploadMB
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
