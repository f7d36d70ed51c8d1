// Package config provides configuration types and defaults for gridclip.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/gridclip/internal/codec"
	"github.com/zjrosen/gridclip/internal/copypaste"
	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/tracing"
)

// Config holds all configuration options for gridclip.
type Config struct {
	Clipboard ClipboardConfig `mapstructure:"clipboard"`
	History   HistoryConfig   `mapstructure:"history"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Server    ServerConfig    `mapstructure:"server"`
}

// ClipboardConfig holds copy and paste behaviour.
type ClipboardConfig struct {
	// Delimiter is a name ("tab", "comma", "semicolon", "pipe", "auto") or a
	// single character.
	Delimiter                string        `mapstructure:"delimiter" yaml:"delimiter"`
	IncludeHeaderWhenCopying bool          `mapstructure:"include_header_when_copying" yaml:"include_header_when_copying"`
	IgnoreFormattingFields   []string      `mapstructure:"ignore_formatting_fields" yaml:"ignore_formatting_fields"`
	MinPasteColumn           int           `mapstructure:"min_paste_column" yaml:"min_paste_column"`
	FieldNameSeed            int           `mapstructure:"field_name_seed" yaml:"field_name_seed"`
	QuoteFields              bool          `mapstructure:"quote_fields" yaml:"quote_fields"`
	CopiedHighlightTTL       time.Duration `mapstructure:"copied_highlight_ttl" yaml:"copied_highlight_ttl"`
}

// HistoryConfig holds undo settings.
type HistoryConfig struct {
	Depth int `mapstructure:"depth"`
}

// StorageConfig locates the sheet database.
type StorageConfig struct {
	Path  string `mapstructure:"path"`  // SQLite file
	Sheet string `mapstructure:"sheet"` // sheet opened when --sheet is not given
}

// TracingConfig holds tracing configuration for copy and paste gestures.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/gridclip/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ServerConfig holds HTTP host settings.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// MaxRows and MaxCols cap how far a request may grow the sheet.
	MaxRows int `mapstructure:"max_rows"`
	MaxCols int `mapstructure:"max_cols"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/gridclip/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gridclip", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Clipboard: ClipboardConfig{
			Delimiter:              "tab",
			IgnoreFormattingFields: []string{},
			CopiedHighlightTTL:     copypaste.DefaultHighlightTTL,
		},
		History: HistoryConfig{Depth: 100},
		Storage: StorageConfig{
			Path:  filepath.Join(".gridclip", "sheets.db"),
			Sheet: "default",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Server: ServerConfig{
			Addr:           ":8089",
			RequestTimeout: 30 * time.Second,
			MaxRows:        100000,
			MaxCols:        1000,
		},
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if err := ValidateClipboard(c.Clipboard); err != nil {
		return err
	}
	if c.History.Depth < 0 {
		return fmt.Errorf("history.depth must not be negative, got %d", c.History.Depth)
	}
	if c.Storage.Sheet == "" {
		return fmt.Errorf("storage.sheet must not be empty")
	}
	if c.Server.MaxRows < 0 || c.Server.MaxCols < 0 {
		return fmt.Errorf("server.max_rows and server.max_cols must not be negative")
	}
	return ValidateTracing(c.Tracing)
}

// ValidateClipboard checks clipboard configuration for errors.
func ValidateClipboard(cb ClipboardConfig) error {
	if cb.Delimiter != "" {
		if _, err := codec.ParseDelimiter(cb.Delimiter); err != nil {
			return fmt.Errorf("clipboard.delimiter: %w", err)
		}
	}
	if cb.MinPasteColumn < 0 {
		return fmt.Errorf("clipboard.min_paste_column must not be negative, got %d", cb.MinPasteColumn)
	}
	if cb.FieldNameSeed < 0 {
		return fmt.Errorf("clipboard.field_name_seed must not be negative, got %d", cb.FieldNameSeed)
	}
	if cb.CopiedHighlightTTL < 0 {
		return fmt.Errorf("clipboard.copied_highlight_ttl must not be negative, got %s", cb.CopiedHighlightTTL)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// CopyPaste converts the clipboard and history sections into the settings
// the copy/paste manager takes.
func (c Config) CopyPaste() (copypaste.Config, error) {
	delim := codec.DefaultDelimiter
	if c.Clipboard.Delimiter != "" {
		d, err := codec.ParseDelimiter(c.Clipboard.Delimiter)
		if err != nil {
			return copypaste.Config{}, fmt.Errorf("clipboard.delimiter: %w", err)
		}
		delim = d
	}
	ttl := c.Clipboard.CopiedHighlightTTL
	if ttl == 0 {
		ttl = copypaste.DefaultHighlightTTL
	}
	return copypaste.Config{
		Delimiter:                delim,
		IncludeHeaderWhenCopying: c.Clipboard.IncludeHeaderWhenCopying,
		QuoteFields:              c.Clipboard.QuoteFields,
		IgnoreFormattingFields:   append([]string(nil), c.Clipboard.IgnoreFormattingFields...),
		MinPasteColumn:           c.Clipboard.MinPasteColumn,
		FieldNameSeed:            c.Clipboard.FieldNameSeed,
		CopiedHighlightTTL:       ttl,
		HistoryDepth:             c.History.Depth,
	}, nil
}

// TracingProvider converts the tracing section. An empty file path falls
// back to DefaultTracesFilePath.
func (c Config) TracingProvider() tracing.Config {
	tc := tracing.DefaultConfig()
	tc.Enabled = c.Tracing.Enabled
	if c.Tracing.Exporter != "" {
		tc.Exporter = c.Tracing.Exporter
	}
	tc.FilePath = c.Tracing.FilePath
	if tc.FilePath == "" {
		tc.FilePath = DefaultTracesFilePath()
	}
	if c.Tracing.OTLPEndpoint != "" {
		tc.OTLPEndpoint = c.Tracing.OTLPEndpoint
	}
	tc.SampleRate = c.Tracing.SampleRate
	return tc
}

// DefaultConfigTemplate returns the default configuration as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# gridclip configuration

# Copy and paste behaviour
clipboard:
  # Cell separator: tab, comma, semicolon, pipe, auto, or a single character.
  # "auto" detects the separator when pasting and uses tab when copying.
  delimiter: tab

  # Prefix copied blocks with a line of column names
  include_header_when_copying: false

  # Quote copied fields that hold the separator, quotes or line breaks,
  # and honor quotes when pasting
  quote_fields: false

  # Fields copied and pasted as raw values, bypassing formatters and editors
  ignore_formatting_fields: []

  # Leftmost column a paste may anchor at
  min_paste_column: 0

  # First number tried when naming columns created by a paste
  field_name_seed: 0

  # How long copied cells stay highlighted
  copied_highlight_ttl: 2s

history:
  # Number of pastes that can be undone
  depth: 100

storage:
  path: .gridclip/sheets.db
  sheet: default

server:
  addr: ":8089"
  request_timeout: 30s
  # Largest sheet a request may grow (0 = server default)
  max_rows: 100000
  max_cols: 1000

# Tracing of copy and paste gestures
# tracing:
#   enabled: true
#   exporter: file        # none, file, stdout, otlp
#   file_path: ~/.config/gridclip/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
