package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yourusername/wise/internal/bridge"
	"github.com/yourusername/wise/internal/client"
	"github.com/yourusername/wise/internal/config"
	"github.com/yourusername/wise/internal/entity"
	"github.com/yourusername/wise/internal/hotkeys"
	"github.com/yourusername/wise/internal/layout"
	"github.com/yourusername/wise/internal/output"
)

var (
	configPath string
	socketPath string
	timeout    time.Duration
	jsonOutput bool
	noColor    bool
	debugMode  bool

	// Flags and WISE_* environment variables, layered over the config file.
	v = config.NewViper()

	// Color functions
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	keyColor     = color.New(color.FgYellow)
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "wise",
	Short: "Keep application windows pinned to screen halves",
	Long: `Wise lays out the windows of chosen applications at full screen or the
left or right half, and puts them back whenever they are moved or resized.

Hold Command+Control+Option+Shift and press H, L or C to move the focused
window to the left half, right half or full screen. Space toggles management
of the focused window.`,
	Version:       "0.1.0",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// checkCmd reports accessibility permission
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check accessibility permission",
	Long:  `Asks the bridge whether this process is trusted to control other applications' windows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c, api, err := connect(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		trusted, err := entity.HasAccessibilityPermission(api, false)
		if err != nil {
			return fmt.Errorf("failed to check accessibility permission: %w", err)
		}
		if !trusted {
			return errNotTrusted
		}

		successColor.Println("✓ Accessibility permission granted")
		return nil
	},
}

var showVisual bool

// presetsCmd prints the preset rectangles
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Show the layout presets for the main screen",
	Long:  `Computes the full, left and right rectangles for the main screen with the configured insets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c, api, err := connect(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		presets, err := layout.NewPresets(api, cfg.GetInsets())
		if err != nil {
			return err
		}
		defer presets.Close()
		frames := presets.Frames()

		if jsonOutput {
			byName := make(map[string]interface{}, len(frames))
			for i, f := range frames {
				byName[layout.Preset(i).String()] = f
			}
			return printJSON(byName)
		}

		output.PrintPresetsTable(os.Stdout, frames)
		if showVisual {
			screen, ok := api.MainScreenFrame()
			if !ok {
				return fmt.Errorf("failed to read main screen frame")
			}
			fmt.Println()
			output.PrintVisualization(os.Stdout, screen, frames, output.DefaultVisualizationOptions())
		}
		return nil
	},
}

// chordsCmd lists the keyboard chords
var chordsCmd = &cobra.Command{
	Use:   "chords",
	Short: "List keyboard chords",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return printJSON(hotkeys.Chords())
		}
		output.PrintChordsTable(os.Stdout, hotkeys.Chords())
		return nil
	},
}

// validateCmd checks a config file
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a config file",
	Long:  `Parses and validates a config file. Without a path the default location is checked.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		if path == "" {
			path = config.GetConfigPath()
		}

		successColor.Printf("✓ %s is valid\n", path)
		keyColor.Print("Apps: ")
		fmt.Println(len(cfg.Apps))
		for _, app := range cfg.Apps {
			infoColor.Printf("  %s\n", app)
		}
		return nil
	},
}

var errNotTrusted = errors.New("accessibility permission not granted; allow this program in System Settings > Privacy & Security > Accessibility")

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default ~/.config/wise/config.yaml)")
	flags.StringVar(&socketPath, "socket", client.DefaultSocketPath(), "Bridge socket path")
	flags.DurationVar(&timeout, "timeout", client.DefaultTimeout, "Bridge request timeout")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")

	for _, name := range []string{"config", "socket", "timeout", "debug", "no-color"} {
		mustBind(name, flags.Lookup(name))
	}

	// Add top-level commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(chordsCmd)
	rootCmd.AddCommand(validateCmd)

	runCmd.Flags().StringVarP(&bundleFile, "file", "f", "", "File of bundle IDs to manage, one per line")
	runCmd.Flags().Bool("prompt", true, "Ask the system to show the accessibility prompt if permission is missing")
	mustBind("prompt", runCmd.Flags().Lookup("prompt"))

	presetsCmd.Flags().BoolVar(&showVisual, "visual", false, "Draw the presets on the screen outline")

	// Disable color if requested, enable debug logging if requested
	cobra.OnInitialize(func() {
		configPath = v.GetString("config")
		noColor = v.GetBool("no-color")
		debugMode = v.GetBool("debug")
		if noColor {
			color.NoColor = true
		}
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

// Helper functions

// loadConfig reads the config file and applies flag and environment
// overrides. An unset socket or timeout falls back to the flag defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(v); err != nil {
		return nil, err
	}
	if cfg.Bridge.Socket == "" {
		cfg.Bridge.Socket = socketPath
	}
	if cfg.Bridge.Timeout == 0 {
		cfg.Bridge.Timeout = config.Duration(timeout)
	}
	return cfg, nil
}

// connect opens the bridge connection described by cfg.
func connect(cfg *config.Config) (*client.Client, *bridge.Bridge, error) {
	c := client.NewClient(cfg.Bridge.Socket, cfg.Bridge.Timeout.Std())
	if err := c.Connect(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to bridge at %s: %w", cfg.Bridge.Socket, err)
	}
	if _, err := c.Ping(context.Background()); err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("bridge at %s is not responding: %w", cfg.Bridge.Socket, err)
	}
	return c, bridge.New(c), nil
}

func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}

// mustBind binds a flag to its config key. A missing flag is a programming
// error.
func mustBind(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", key, err))
	}
}
