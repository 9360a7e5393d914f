package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/coursekeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Only the
// flags listed here are picked out of os.Args; the rest are left to other
// parsers.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-course", "-timeout", "-l", "-log", "-logfmt"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "base URL of the curriculum API")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "bearer access token")
	fs.StringVar(&cfg.CourseID, "course", cfg.CourseID, "id of the course to edit")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LedgerDSN, "l", cfg.LedgerDSN, "upload ledger DSN (empty keeps it in memory)")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "logfmt", cfg.LogFormat, "log format (text or json)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
