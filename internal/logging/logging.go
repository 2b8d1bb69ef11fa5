package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	// Logger discards everything until Init is called.
	Logger  = zerolog.Nop()
	logFile *os.File
)

// timestampHook adds timestamp at the end of each log event
type timestampHook struct{}

func (h timestampHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	e.Time("ts", time.Now())
}

// Options configures Init.
type Options struct {
	// Dir holds wise.log. Empty means ~/.local/state/wise.
	Dir string
	// Console receives human-readable output as well. Nil disables it.
	Console *os.File
	// NoColor disables colour on the console even on a terminal.
	NoColor bool
	Debug   bool
}

// DefaultDir returns the directory log files are written to by default.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "wise")
}

// Init initializes the logging system with zerolog
func Init(opts Options) error {
	logDir := opts.Dir
	if logDir == "" {
		logDir = DefaultDir()
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, "wise.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logFile = f

	// Configure field names
	zerolog.MessageFieldName = "msg"

	var out io.Writer = logFile
	if opts.Console != nil {
		console := zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.TimeOnly,
			NoColor:    opts.NoColor || !term.IsTerminal(int(opts.Console.Fd())),
		}
		out = zerolog.MultiLevelWriter(logFile, console)
	}

	// Create logger with hook that adds timestamp last
	Logger = zerolog.New(out).Hook(timestampHook{})
	SetDebug(opts.Debug)

	return nil
}

// SetDebug switches the global level between debug and info.
func SetDebug(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Close closes the log file
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	Logger = zerolog.Nop()
}

// Debug returns a debug level event
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info returns an info level event
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn returns a warn level event
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error returns an error level event
func Error() *zerolog.Event {
	return Logger.Error()
}
