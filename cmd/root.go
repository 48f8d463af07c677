// =============================================================================
// BOM Steel Filler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (bomfill)
//   ├── fillCmd     (bomfill fill)
//   ├── inspectCmd  (bomfill inspect)
//   ├── classifyCmd (bomfill classify)
//   └── versionCmd  (bomfill version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --env-file, --verbose)
//   2. Loading the configuration (defaults, YAML file, environment)
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bom-steel-filler/internal/config"
	"github.com/ginjaninja78/bom-steel-filler/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// envFile holds the path to the .env file.
var envFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bomfill",
	Short: "BOM Steel Filler - Fill a steel takeoff spreadsheet from a bill of materials",
	Long: `BOM Steel Filler reads the bill-of-materials table of an engineering
document and writes each steel item into the matching section of a
pre-formatted takeoff workbook.

Key Features:
  - Profile classification (U, purlin, angle, round bar, tube) from free text
  - Dimension extraction with metric and imperial (fractional inch) notation
  - Non-destructive placement: only placeholder rows are filled
  - Backup copy of the workbook before saving
  - Skip report for items with no free row left

Example Usage:
  bomfill fill                                   # Use bomfill.yaml or the defaults
  bomfill fill --table lista.docx --workbook tabela.xlsx
  bomfill fill --dry-run                         # Show placements, write nothing
  bomfill inspect --table lista.docx             # Show the parsed items
  bomfill classify "U 100x50x3mm"                # Classify one description`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadRuntime loads the .env file and the configuration, and builds the
// logger the commands share.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	loadedEnv := config.LoadDotEnv(envFile)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Logging()
	if verbose {
		logCfg.Level = "debug"
	}

	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Debug("Configuration loaded",
		zap.String("config", cfgFile),
		zap.Bool("dotenv", loadedEnv))

	return cfg, logger, nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the configuration file (a missing file means defaults)",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to a .env file with BOMFILL_* overrides",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
