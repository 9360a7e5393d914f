// Package config loads runtime configuration for the coursekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string        base URL of the curriculum API
//	-t string        bearer access token
//	-course string   id of the course to edit
//	-timeout int     request timeout (seconds)
//	-l string        upload ledger DSN
//	-log string      log level: debug|info|warn|error
//	-logfmt string   log format: text|json
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "backend_url": "https://api.example.com/api/v1",
//	  "course_id": "8b1c...",
//	  "request_timeout": "30s",
//	  "ledger_dsn": "file:.coursekeeper/uploads.db",
//	  "log_level": "debug"
//	}
//
// Keys absent from the file keep their earlier value.
package config
