// Package cli implements the eliza CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/eliza/internal/config"
	"github.com/rcliao/eliza/internal/script"
	"github.com/rcliao/eliza/internal/store"
	"github.com/rcliao/eliza/internal/wrap"
)

var (
	configPath string
	dbPath     string
	scriptPath string
	logLevel   string
	formatFlag string
	width      int
	verbose    bool

	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "eliza",
	Short: "Talk to Weizenbaum's ELIZA",
	Long: `A faithful rendition of the 1966 ELIZA program and its DOCTOR script.
Conversations are stored in SQLite and can be resumed, searched and exported.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (default: $ELIZA_CONFIG or ~/.eliza/config.yaml)")
	pf.StringVarP(&dbPath, "db", "d", "", "Database path (default: $ELIZA_DB or ~/.eliza/sessions.db)")
	pf.StringVarP(&scriptPath, "script", "s", "", "Script file (default: built-in DOCTOR)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	pf.IntVarP(&width, "width", "w", 0, "Line width for replies")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// setup resolves the configuration and builds the logger. Flags win over
// the environment, which wins over the config file.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.DB = dbPath
	}
	if scriptPath != "" {
		c.Script = scriptPath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if width > 0 {
		c.Width = width
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	logger, err = newLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	logger.Debug("configured",
		zap.String("config", path),
		zap.String("db", cfg.DB),
		zap.String("script", scriptName(cfg.Script)),
		zap.Int("width", cfg.Width))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func getDBPath() string {
	return cfg.DB
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// doctorName is the stored script name of the built-in script.
const doctorName = "doctor"

func scriptName(path string) string {
	if path == "" {
		return doctorName
	}
	return path
}

// loadScript loads a script by its stored name: doctor is built in,
// anything else is a file path. It returns the name to store, with file
// paths made absolute.
func loadScript(name string) (*script.Script, string, error) {
	if name == "" || name == doctorName {
		sc, err := script.LoadDoctor()
		return sc, doctorName, err
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, "", err
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", fmt.Errorf("read script: %w", err)
	}
	sc, err := script.Load(abs, string(text))
	return sc, abs, err
}

func wrapOptions() wrap.Options {
	return wrap.Options{Width: cfg.Width}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
