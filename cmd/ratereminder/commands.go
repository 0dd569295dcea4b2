package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ratereminder/core"
)

// appBuilder assembles an App and returns its cleanup.
type appBuilder func(ctx context.Context, opts Options) (*App, func(), error)

// newRootCommand creates the root command.
func newRootCommand(version string, build appBuilder) *cobra.Command {
	opts := &Options{BuildVersion: version}

	cmd := &cobra.Command{
		Use:           "ratereminder",
		Short:         "Ask users to rate the app after enough launches",
		Long:          "ratereminder counts application launches and, once the threshold is reached, asks the user to rate the app in the store or to send feedback by email.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a JSON or YAML config file")
	cmd.PersistentFlags().StringVarP(&opts.Profile, "profile", "p", "", "Built-in profile (development, testing, staging, production)")

	cmd.AddCommand(
		newCheckCommand(opts, build),
		newStateCommand(opts, build),
		newResetCommand(opts, build),
		newConfigCommand(opts, build),
	)

	return cmd
}

// withApp builds the App for one command run and tears it down afterwards.
func withApp(cmd *cobra.Command, opts *Options, build appBuilder, run func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, cleanup, err := build(ctx, *opts)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer cleanup()
	return run(ctx, app)
}

func newCheckCommand(opts *Options, build appBuilder) *cobra.Command {
	var appVersion string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Count one launch and prompt if the threshold is reached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, build, func(ctx context.Context, app *App) error {
				var (
					outcome core.Outcome
					err     error
				)
				if appVersion != "" {
					v, nerr := core.NormalizeVersion(appVersion)
					if nerr != nil {
						return fmt.Errorf("invalid --app-version: %w", nerr)
					}
					outcome, err = app.Reminder.CheckAndMaybePrompt(ctx, app.Config.Reminder, v, app.Platform)
				} else {
					outcome, err = app.Reminder.CheckLaunch(ctx, app.Config.Reminder)
				}
				if err != nil {
					app.Logger.Error("reminder check failed", "error", err)
					return err
				}
				app.Logger.Debug("reminder check finished", slog.String("outcome", outcome.String()))
				_, err = fmt.Fprintln(cmd.OutOrStdout(), outcome)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&appVersion, "app-version", "", "Installed version to report instead of the build version")

	return cmd
}

func newStateCommand(opts *Options, build appBuilder) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the persisted reminder state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, build, func(ctx context.Context, app *App) error {
				st, err := app.Reminder.State(ctx)
				if err != nil {
					return err
				}
				return printState(cmd, st, asJSON)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output state as JSON")

	return cmd
}

func newResetCommand(opts *Options, build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the launch count and dismissal flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, build, func(ctx context.Context, app *App) error {
				st, err := app.Reminder.ResetLaunchCount(ctx)
				if err != nil {
					return err
				}
				return printState(cmd, st, false)
			})
		},
	}
}

func newConfigCommand(opts *Options, build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, build, func(_ context.Context, app *App) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), app.Config.String())
				return err
			})
		},
	}
}

func printState(cmd *cobra.Command, st core.ReminderState, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	_, err := fmt.Fprintf(out, "launch_count: %d\ndismissed: %t\napp_version: %s\n", st.LaunchCount, st.Dismissed, st.StoredAppVersion)
	return err
}
