package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/yourusername/wise/internal/bridge"
	"github.com/yourusername/wise/internal/config"
	"github.com/yourusername/wise/internal/engine"
	"github.com/yourusername/wise/internal/entity"
	"github.com/yourusername/wise/internal/layout"
	"github.com/yourusername/wise/internal/logging"
	"github.com/yourusername/wise/internal/output"
	"github.com/yourusername/wise/internal/state"
)

var bundleFile string

// runCmd is the window manager itself
var runCmd = &cobra.Command{
	Use:   "run [bundle-id...]",
	Short: "Manage the windows of the given applications",
	Long: `Lays out every window of the given applications at full screen and keeps
them there until the process is stopped. Applications are named by bundle ID,
on the command line, in a file given with --file, or in the config file.

Send SIGUSR1 to print the current assignments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ids, err := bundleIDs(cfg, args, bundleFile)
		if err != nil {
			return err
		}

		if err := logging.Init(logging.Options{
			Console: os.Stderr,
			NoColor: noColor,
			Debug:   debugMode,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer logging.Close()

		c, api, err := connect(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, unix.SIGINT, unix.SIGTERM, unix.SIGUSR1)
		defer signal.Stop(sigs)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		return serve(ctx, api, cfg, ids, sigs, c, os.Stdout)
	},
}

// bundleIDs merges the applications named in the config file, on the
// command line and in file.
func bundleIDs(cfg *config.Config, args []string, file string) ([]string, error) {
	fromArgs, err := config.ParseBundleIDs(args)
	if err != nil {
		return nil, err
	}
	var fromFile []string
	if file != "" {
		if fromFile, err = config.ReadBundleIDs(file); err != nil {
			return nil, err
		}
	}

	ids := config.MergeBundleIDs(cfg.Apps, fromArgs, fromFile)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no applications to manage: pass bundle IDs, use --file, or list apps in the config file")
	}
	return ids, nil
}

// connection reports when the bridge goes away and why.
type connection interface {
	Done() <-chan struct{}
	Err() error
}

// serve starts managing ids and blocks until a terminating signal arrives
// or the bridge goes away. Every setup step is fatal.
func serve(ctx context.Context, api *bridge.Bridge, cfg *config.Config, ids []string, sigs <-chan os.Signal, conn connection, out io.Writer) error {
	trusted, err := entity.HasAccessibilityPermission(api, cfg.ShouldPrompt())
	if err != nil {
		return fmt.Errorf("failed to check accessibility permission: %w", err)
	}
	if !trusted {
		return errNotTrusted
	}

	presets, err := layout.NewPresets(api, cfg.GetInsets())
	if err != nil {
		return fmt.Errorf("failed to compute layout presets: %w", err)
	}
	defer presets.Close()

	eng := engine.New(api, presets, state.NewStore())
	defer eng.Close()

	if err := api.Start(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}
	for _, id := range ids {
		n, err := eng.Register(id)
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", id, err)
		}
		successColor.Fprintf(out, "✓ Managing %s (%d windows)\n", id, n)
	}
	if err := api.ListenKeys(ctx, eng.HandleKey); err != nil {
		return fmt.Errorf("failed to listen for key chords: %w", err)
	}

	logging.Info().Strs("apps", ids).Msg("running")

	for {
		select {
		case sig := <-sigs:
			if sig == unix.SIGUSR1 {
				output.PrintAssignmentsTable(out, eng.Store().Snapshot())
				output.PrintAssignmentSummary(out, eng.Store())
				continue
			}
			logging.Info().Str("signal", sig.String()).Msg("shutting down")
			return nil
		case <-conn.Done():
			return fmt.Errorf("lost connection to bridge: %w", conn.Err())
		case <-ctx.Done():
			return nil
		}
	}
}
