package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pulse/internal/bootstrap"
	heartratedto "pulse/internal/modules/heartrate/dto"
	"pulse/internal/platform/config"
)

const timestampLayout = "2006-01-02 15:04"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "pulse",
		Short:         "Record and review heart-rate readings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", config.DefaultDataDir(), "directory holding pulse.yaml, the record database and grants")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newHeartRateCmd(&dataDir))
	root.AddCommand(newPermissionCmd(&dataDir))
	root.AddCommand(newSettingsCmd(&dataDir))
	return root
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// withApp runs fn against a freshly wired app and releases it afterwards.
func withApp(dataDir string, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func newTUICmd(dataDir *string) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the pulse terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(app, metricsAddr)
			})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the UI runs")
	return cmd
}

func newHeartRateCmd(dataDir *string) *cobra.Command {
	hr := &cobra.Command{Use: "hr", Short: "Heart-rate readings"}

	var bpm, at string
	add := &cobra.Command{
		Use:   "add",
		Short: "Save a reading and print the refreshed history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				stamp := at
				if stamp == "" {
					stamp = time.Now().In(app.Config.Location).Format(timestampLayout)
				}
				state, err := app.HeartRateCLI.Add(cmd.Context(), bpm, stamp)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s bpm at %s\n", strings.TrimSpace(bpm), stamp)
				writeHistory(cmd.OutOrStdout(), state.Records)
				return nil
			})
		},
	}
	add.Flags().StringVar(&bpm, "bpm", "", "beats per minute (1-300)")
	add.Flags().StringVar(&at, "at", "", "reading time as yyyy-MM-dd HH:mm in the configured zone (default now)")
	_ = add.MarkFlagRequired("bpm")

	list := &cobra.Command{
		Use:   "list",
		Short: "List readings from the last 24 hours, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				state, err := app.HeartRateCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				writeHistory(cmd.OutOrStdout(), state.Records)
				return nil
			})
		},
	}

	hr.AddCommand(add, list)
	return hr
}

func newPermissionCmd(dataDir *string) *cobra.Command {
	perm := &cobra.Command{Use: "permission", Short: "Heart-rate access for pulse"}

	perm.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether read and write access are granted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.PermissionCLI.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("Error checking permissions: %w", err)
				}
				writeStatus(cmd.OutOrStdout(), out.Granted, out.Capabilities)
				return nil
			})
		},
	})

	perm.AddCommand(&cobra.Command{
		Use:   "request",
		Short: "Ask the health store for read and write access",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.PermissionCLI.Request(cmd.Context())
				if err != nil {
					return fmt.Errorf("Error checking permissions: %w", err)
				}
				writeStatus(cmd.OutOrStdout(), out.Granted, out.Capabilities)
				return nil
			})
		},
	})

	perm.AddCommand(&cobra.Command{
		Use:   "settings",
		Short: "Open the health settings surface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				if err := app.PermissionCLI.OpenSettings(cmd.Context()); err != nil {
					return fmt.Errorf("Error opening health settings: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "opened %s\n", app.Config.GrantsPath)
				return nil
			})
		},
	})
	return perm
}

func newSettingsCmd(dataDir *string) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Inspect or edit health store grants directly"}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show granted capabilities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.SettingsCLI.Show(cmd.Context())
				if err != nil {
					return err
				}
				writeGrants(cmd.OutOrStdout(), out.Capabilities)
				return nil
			})
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "grant <capability>...",
		Short: "Grant capabilities (read-heart-rate, write-heart-rate)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.SettingsCLI.Grant(cmd.Context(), args)
				if err != nil {
					return err
				}
				writeGrants(cmd.OutOrStdout(), out.Capabilities)
				return nil
			})
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "revoke <capability>...",
		Short: "Revoke capabilities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.SettingsCLI.Revoke(cmd.Context(), args)
				if err != nil {
					return err
				}
				writeGrants(cmd.OutOrStdout(), out.Capabilities)
				return nil
			})
		},
	})
	return settings
}

func writeHistory(w io.Writer, records []heartratedto.SampleOutput) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No heart rate records found")
		return
	}
	_, _ = fmt.Fprintf(w, "%-16s  %3s\n", "TIME", "BPM")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%-16s  %3d\n", r.LocalTime, r.BeatsPerMinute)
	}
}

func writeStatus(w io.Writer, granted bool, capabilities []string) {
	answer := "no"
	if granted {
		answer = "yes"
	}
	_, _ = fmt.Fprintf(w, "granted: %s\n", answer)
	writeGrants(w, capabilities)
}

func writeGrants(w io.Writer, capabilities []string) {
	if len(capabilities) == 0 {
		_, _ = fmt.Fprintln(w, "capabilities: none")
		return
	}
	_, _ = fmt.Fprintf(w, "capabilities: %s\n", strings.Join(capabilities, ", "))
}
