package cli

import (
	"context"

	"github.com/codecampus/campus-cli/internal/client/config"
	"github.com/spf13/cobra"
)

// withApp builds the full client stack for one command invocation, restores
// any persisted session, runs fn, and tears the stack down again.
func withApp(cmd *cobra.Command, cfg *config.Config, fn func(ctx context.Context, a *App) error) error {
	ctx := cmd.Context()

	a, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Bootstrap(ctx)
	return fn(ctx, a)
}

// NewRootCommand assembles the campus command tree. Running the bare command
// drops into the interactive REPL; every REPL command is also exposed as a
// one-shot subcommand for scripting.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "campus",
		Short:         "CodeCampus community platform client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
				runREPL(ctx, a, a.getStatus, newStdinScanner())
				return nil
			})
		},
	}

	// Config flags are handled by the config package before cobra runs;
	// declare them here only so cobra does not reject them.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().StringP("api", "a", "", "base URL of the backend API")
	root.PersistentFlags().StringP("google-client-id", "g", "", "Google OAuth client ID")
	root.PersistentFlags().IntP("port", "p", 0, "loopback port for the OAuth callback")
	root.PersistentFlags().StringP("database", "d", "", "SQLite DSN of the local session store")
	root.PersistentFlags().StringP("log-level", "l", "", "log level")

	root.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Sign in with Google",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.Login(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the current user and profile",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.Whoami(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "profile",
			Short: "Update profile fields",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.ProfileSet(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "tracks",
			Short: "List coding tracks",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.Tracks(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "admin",
			Short: "Moderation entry point (admin accounts only)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.Admin(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Sign out and clear the local session",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.Logout(ctx)
				})
			},
		},
	)

	return root
}
