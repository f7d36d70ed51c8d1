// Package cmd implements the gridclip command line.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/gridclip/internal/config"
	"github.com/zjrosen/gridclip/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// defaultConfigPath is where a config file is created on first run.
var defaultConfigPath = filepath.Join(".gridclip", "config.yaml")

var version = "dev"

// app holds the state shared by all subcommands of one invocation.
type app struct {
	v          *viper.Viper
	cfgFile    string
	debug      bool
	cfg        config.Config
	configPath string
	logCleanup func()
}

// NewRootCmd builds the command tree with fresh flag and config state.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:     "gridclip",
		Short:   "Copy and paste between the clipboard and a data grid",
		Long:    `gridclip moves rectangular ranges between a spreadsheet-style grid and the clipboard as delimited text, growing the grid to fit pastes and undoing them atomically.`,
		Version: version,
		// Errors are printed by cobra; usage only for flag mistakes.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
		RunE: a.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: .gridclip/config.yaml or ~/.config/gridclip/config.yaml)")
	pf.BoolVarP(&a.debug, "debug", "d", false, "write a debug log (also enabled by GRIDCLIP_DEBUG)")
	pf.StringP("sheet", "s", "", "sheet to open (overrides storage.sheet)")
	pf.String("db", "", "sheet database path (overrides storage.path)")

	_ = a.v.BindPFlag("storage.sheet", pf.Lookup("sheet"))
	_ = a.v.BindPFlag("storage.path", pf.Lookup("db"))

	root.AddCommand(
		a.tuiCmd(),
		a.copyCmd(),
		a.pasteCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.serveCmd(),
		a.sheetsCmd(),
	)
	return root
}

// init loads configuration and starts logging.
func (a *app) init() error {
	if err := a.initLogging(); err != nil {
		return err
	}
	if err := a.loadConfig(); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Debug(log.CatConfig, "configuration loaded", "path", a.configPath, "sheet", a.cfg.Storage.Sheet, "db", a.cfg.Storage.Path)
	return nil
}

func (a *app) initLogging() error {
	if !a.debug && os.Getenv("GRIDCLIP_DEBUG") == "" {
		return nil
	}
	logPath := os.Getenv("GRIDCLIP_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, "gridclip")
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	a.logCleanup = cleanup
	log.Info(log.CatConfig, "gridclip starting", "version", version, "logPath", logPath)
	return nil
}

func (a *app) close() {
	if a.logCleanup != nil {
		a.logCleanup()
		a.logCleanup = nil
	}
}

func (a *app) loadConfig() error {
	v := a.v
	setDefaults(v, config.Defaults())
	v.SetEnvPrefix("GRIDCLIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if a.cfgFile != "" {
		if _, err := os.Stat(a.cfgFile); errors.Is(err, fs.ErrNotExist) {
			if err := config.WriteDefaultConfig(a.cfgFile); err != nil {
				return err
			}
		}
		v.SetConfigFile(a.cfgFile)
	} else {
		// Config lookup order:
		// 1. .gridclip/config.yaml (current directory)
		// 2. ~/.config/gridclip/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			v.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			v.AddConfigPath(filepath.Join(home, ".config", "gridclip"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		// No config file found anywhere - create the default one
		if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
			v.SetConfigFile(defaultConfigPath)
			_ = v.ReadInConfig()
		}
	}

	a.configPath = v.ConfigFileUsed()
	if a.configPath == "" {
		a.configPath = defaultConfigPath
	}
	if err := v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("clipboard.delimiter", d.Clipboard.Delimiter)
	v.SetDefault("clipboard.include_header_when_copying", d.Clipboard.IncludeHeaderWhenCopying)
	v.SetDefault("clipboard.ignore_formatting_fields", d.Clipboard.IgnoreFormattingFields)
	v.SetDefault("clipboard.min_paste_column", d.Clipboard.MinPasteColumn)
	v.SetDefault("clipboard.field_name_seed", d.Clipboard.FieldNameSeed)
	v.SetDefault("clipboard.quote_fields", d.Clipboard.QuoteFields)
	v.SetDefault("clipboard.copied_highlight_ttl", d.Clipboard.CopiedHighlightTTL)
	v.SetDefault("history.depth", d.History.Depth)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.sheet", d.Storage.Sheet)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.max_rows", d.Server.MaxRows)
	v.SetDefault("server.max_cols", d.Server.MaxCols)
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
