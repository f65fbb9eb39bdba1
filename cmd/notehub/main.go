package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/notehub/internal/buildinfo"
	"github.com/dmitrijs2005/notehub/internal/client/cli"
	"github.com/dmitrijs2005/notehub/internal/client/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notehub",
		Short: "NoteHub terminal client",
		Long: `notehub signs you in to NoteHub and keeps your session usable while the
server is unreachable. Without a subcommand it starts an interactive shell.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(cmd.Context())
		},
	}
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		viewCmd("login", "Sign in", func(a *cli.App) func(context.Context) error { return a.Login }),
		viewCmd("logout", "Sign out and forget the stored session", func(a *cli.App) func(context.Context) error { return a.Logout }),
		viewCmd("register", "Create an account", func(a *cli.App) func(context.Context) error { return a.Register }),
		viewCmd("whoami", "Show the current session", func(a *cli.App) func(context.Context) error { return a.Status }),
		viewCmd("profile", "Edit your profile", func(a *cli.App) func(context.Context) error { return a.Profile }),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)
	return cmd
}

// viewCmd builds a subcommand that restores the session and runs one view.
func viewCmd(use, short string, view func(a *cli.App) func(context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.RunCommand(cmd.Context(), view(app))
		},
	}
}

func newApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cmd.Context(), cfg)
}
