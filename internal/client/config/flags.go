package config

import (
	"flag"
	"os"

	"github.com/codecampus/campus-cli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend API (default from Config)
//	-g string   Google OAuth client ID
//	-p int      loopback port for the OAuth callback (0 = any free port)
//	-d string   SQLite DSN of the local session store
//	-l string   log level (debug|info|warn|error)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-p", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.GoogleClientID, "g", cfg.GoogleClientID, "Google OAuth client ID")
	fs.IntVar(&cfg.RedirectPort, "p", cfg.RedirectPort, "loopback port for the OAuth callback")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite DSN of the local session store")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
