// =============================================================================
// BOM Steel Filler - Configuration Module
// =============================================================================
//
// This module loads the run configuration. Values are layered, later layers
// winning:
//   1. Built-in defaults
//   2. The YAML config file (bomfill.yaml), if present
//   3. BOMFILL_* environment variables, including those from a .env file
//   4. Command-line flags (applied by the cmd package)
//
// A missing config file is not an error: the defaults describe the usual
// setup, with the table and the takeoff workbook in the working directory.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/bom-steel-filler/internal/logging"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "BOMFILL_"

// DefaultConfigFile is the config file looked up when none is given.
const DefaultConfigFile = "bomfill.yaml"

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the settings of a fill run.
type Config struct {
	// -------------------------------------------------------------------------
	// INPUT / OUTPUT
	// -------------------------------------------------------------------------

	// TablePath is the bill-of-materials document (.docx, .csv or .xlsx).
	TablePath string `yaml:"table_path"`

	// WorkbookPath is the takeoff workbook to fill.
	WorkbookPath string `yaml:"workbook_path"`

	// SheetName selects the sheet to fill. Empty means the active sheet.
	SheetName string `yaml:"sheet_name"`

	// FirstDataRow is the first row below the sheet header.
	FirstDataRow int `yaml:"first_data_row"`

	// -------------------------------------------------------------------------
	// BACKUPS AND REPORTS
	// -------------------------------------------------------------------------

	// BackupBeforeSave copies the workbook into BackupDir before saving.
	BackupBeforeSave bool `yaml:"backup_before_save"`

	// BackupDir receives the workbook copies.
	BackupDir string `yaml:"backup_dir"`

	// BackupKeep is the number of backups kept per workbook. 0 keeps all.
	BackupKeep int `yaml:"backup_keep"`

	// ReportDir receives the skip report and the run summary. Empty
	// disables the report files.
	ReportDir string `yaml:"report_dir"`

	// -------------------------------------------------------------------------
	// LOGGING AND METRICS
	// -------------------------------------------------------------------------

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json".
	LogFormat string `yaml:"log_format"`

	// LogFile is the log destination. Empty means stderr.
	LogFile string `yaml:"log_file"`

	// MetricsTextfile is where run metrics are written for the node exporter
	// textfile collector. Empty disables the export.
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TablePath:        "lista-material.docx",
		WorkbookPath:     "TABELA-DE-AÇO R8.xlsx",
		FirstDataRow:     4,
		BackupBeforeSave: true,
		BackupDir:        "./backups",
		BackupKeep:       10,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadDotEnv loads environment variables from a .env file without overriding
// variables that are already set. It reports whether a file was loaded.
func LoadDotEnv(path string) bool {
	if path == "" {
		path = ".env"
	}
	return godotenv.Load(path) == nil
}

// Load builds the configuration from defaults, the YAML file at configPath
// and the environment.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. A missing file is skipped.
//
// RETURNS:
//   - The configuration.
//   - An error if the file cannot be parsed, an environment value is
//     malformed, or the result is invalid.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := applyEnv(config, os.LookupEnv); err != nil {
		return nil, err
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnv overrides config with BOMFILL_* variables.
func applyEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TABLE":            &config.TablePath,
		"WORKBOOK":         &config.WorkbookPath,
		"SHEET":            &config.SheetName,
		"BACKUP_DIR":       &config.BackupDir,
		"REPORT_DIR":       &config.ReportDir,
		"LOG_LEVEL":        &config.LogLevel,
		"LOG_FORMAT":       &config.LogFormat,
		"LOG_FILE":         &config.LogFile,
		"METRICS_TEXTFILE": &config.MetricsTextfile,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FIRST_DATA_ROW": &config.FirstDataRow,
		"BACKUP_KEEP":    &config.BackupKeep,
	}
	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup(EnvPrefix + "BACKUP"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sBACKUP: %w", EnvPrefix, err)
		}
		config.BackupBeforeSave = b
	}

	return nil
}

// applyDefaults sets default values for options left empty.
func applyDefaults(config *Config) {
	if config.FirstDataRow == 0 {
		config.FirstDataRow = 4
	}
	if config.BackupDir == "" {
		config.BackupDir = "./backups"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	config.LogFormat = strings.ToLower(config.LogFormat)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.FirstDataRow < 1 {
		return fmt.Errorf("first_data_row must be at least 1, got %d", c.FirstDataRow)
	}
	if c.BackupKeep < 0 {
		return fmt.Errorf("backup_keep must not be negative, got %d", c.BackupKeep)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		OutputPath: c.LogFile,
	}
}
