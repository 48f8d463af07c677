// =============================================================================
// BOM Steel Filler - Fill Command
// =============================================================================
//
// This file defines the 'fill' command, the main command of the tool. It
// reads the materials table and writes every item into the takeoff workbook.
//
// COMMAND USAGE:
//   bomfill fill [flags]
//
// FLAGS:
//   --table       : Materials table (.docx, .csv or .xlsx)
//   --workbook    : Takeoff workbook to fill
//   --sheet       : Sheet to fill (default: the active sheet)
//   --first-row   : First data row below the sheet header
//   --dry-run     : Compute the placements without saving
//   --no-backup   : Skip the backup copy before saving
//
// FILL PIPELINE:
//   1. Check that the workbook can be written (before any parsing)
//   2. Read the table and extract the material items
//   3. Open the workbook and fill the placeholder rows in memory
//   4. Back up the workbook, then save it once
//   5. Write the skip report, the run summary and the metrics textfile
//
// A run that fails before step 4 leaves the workbook untouched.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bom-steel-filler/internal/bomtable"
	"github.com/ginjaninja78/bom-steel-filler/internal/config"
	"github.com/ginjaninja78/bom-steel-filler/internal/filler"
	"github.com/ginjaninja78/bom-steel-filler/internal/logging"
	"github.com/ginjaninja78/bom-steel-filler/internal/metrics"
	"github.com/ginjaninja78/bom-steel-filler/internal/validation"
	"github.com/ginjaninja78/bom-steel-filler/internal/workbook"
	"github.com/ginjaninja78/bom-steel-filler/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	fillTable    string
	fillWorkbook string
	fillSheet    string
	fillFirstRow int
	fillDryRun   bool
	fillNoBackup bool
)

// fillCmd represents the 'fill' command.
var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the takeoff workbook from the materials table",
	Long: `The fill command reads the bill-of-materials table, classifies every
profile description and writes each item into the next placeholder row of its
section in the takeoff workbook.

A row is a placeholder when its section label matches and its column B is
empty, zero or "X". Rows are never inserted and no other cell is touched.

Items whose section has no placeholder row left are skipped and reported; the
run still saves the items that were placed.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync()

		applyFillFlags(cmd, cfg)

		_, err = runFill(cmd.Context(), cmd.OutOrStdout(), cfg, logger, metrics.New(), fillDryRun)
		return err
	},
}

// applyFillFlags lets explicitly set flags override the configuration.
func applyFillFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("table") {
		cfg.TablePath = fillTable
	}
	if flags.Changed("workbook") {
		cfg.WorkbookPath = fillWorkbook
	}
	if flags.Changed("sheet") {
		cfg.SheetName = fillSheet
	}
	if flags.Changed("first-row") {
		cfg.FirstDataRow = fillFirstRow
	}
	if fillNoBackup {
		cfg.BackupBeforeSave = false
	}
}

// =============================================================================
// FILL PIPELINE
// =============================================================================

// fillReport is what a run leaves behind.
type fillReport struct {
	RunID       string
	SheetName   string
	Items       int
	Result      filler.Result
	Findings    *validation.ValidationResult
	BackupPath  string
	SkipReport  string
	SummaryPath string
}

// runFill executes the fill pipeline.
func runFill(ctx context.Context, out io.Writer, cfg *config.Config, baseLogger *zap.Logger, m *metrics.FillMetrics, dryRun bool) (report *fillReport, err error) {
	start := time.Now()
	report = &fillReport{RunID: uuid.New().String()}
	logger := logging.WithRun(baseLogger, report.RunID)

	defer func() {
		status := "success"
		switch {
		case errors.Is(err, bomtable.ErrNoData):
			status = "no_data"
		case err != nil:
			status = "failure"
		}
		m.RecordRun(status, time.Since(start))
		if cfg.MetricsTextfile != "" {
			if werr := m.WriteTextfile(cfg.MetricsTextfile); werr != nil {
				logger.Warn("Failed to write metrics", zap.Error(werr))
			}
		}
	}()

	// =========================================================================
	// STEP 1: WORKBOOK ACCESS CHECK
	// =========================================================================

	if !dryRun {
		if err := utils.CheckWritable(ctx, cfg.WorkbookPath); err != nil {
			if errors.Is(err, utils.ErrFileLocked) {
				return report, fmt.Errorf("close the workbook and try again: %w", err)
			}
			return report, err
		}
	}

	// =========================================================================
	// STEP 2: READ THE TABLE
	// =========================================================================

	logger.Info("Reading materials table", zap.String("table", cfg.TablePath))

	table, err := bomtable.Read(cfg.TablePath)
	if err != nil {
		return report, fmt.Errorf("nothing to fill: %w", err)
	}

	items, findings, err := bomtable.ExtractItems(table)
	report.Findings = findings
	logFindings(logger, findings)
	m.RowsDropped.Add(float64(countRule(findings, validation.RuleNumeric)))
	if err != nil {
		return report, fmt.Errorf("nothing to fill: %w", err)
	}

	report.Items = len(items)
	m.ItemsRead.Add(float64(len(items)))
	fmt.Fprintf(out, "Table read: %d item(s) found. Processing...\n", len(items))

	// =========================================================================
	// STEP 3: FILL THE SHEET IN MEMORY
	// =========================================================================

	wb, err := workbook.Open(cfg.WorkbookPath, cfg.SheetName, logger)
	if err != nil {
		return report, err
	}
	defer wb.Close()
	report.SheetName = wb.SheetName()

	result, err := filler.New(logger, m, filler.Options{
		FirstDataRow: cfg.FirstDataRow,
		DryRun:       dryRun,
	}).Fill(wb, items)
	if err != nil {
		return report, fmt.Errorf("fill aborted, workbook not saved: %w", err)
	}
	report.Result = result

	printSections(out, result)

	// =========================================================================
	// STEP 4: BACKUP AND SAVE
	// =========================================================================

	if !dryRun {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("interrupted, workbook not saved: %w", err)
		}

		if cfg.BackupBeforeSave {
			backupPath, err := utils.BackupWorkbook(wb.Path(), cfg.BackupDir)
			if err != nil {
				return report, err
			}
			report.BackupPath = backupPath
			logger.Info("Workbook backed up", zap.String("backup", backupPath))

			if removed, err := utils.CleanOldBackups(cfg.BackupDir, wb.Path(), cfg.BackupKeep); err != nil {
				logger.Warn("Failed to clean old backups", zap.Error(err))
			} else if removed > 0 {
				logger.Debug("Old backups removed", zap.Int("removed", removed))
			}
		}

		if err := wb.Save(); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return report, fmt.Errorf("%w: %v", utils.ErrFileLocked, err)
			}
			return report, err
		}
		fmt.Fprintf(out, "Workbook updated: %s\n", wb.Path())
	} else {
		fmt.Fprintln(out, "Dry run: workbook not saved.")
	}

	// =========================================================================
	// STEP 5: REPORTS
	// =========================================================================

	if cfg.ReportDir != "" {
		if err := writeReports(report, cfg, start, dryRun); err != nil {
			logger.Warn("Failed to write reports", zap.Error(err))
		}
	}

	logger.Info("Fill complete",
		zap.Int("placed", result.Stats.ItemsPlaced),
		zap.Int("skipped", result.Stats.ItemsSkipped),
		zap.Duration("duration", time.Since(start)))

	return report, nil
}

func logFindings(logger *zap.Logger, findings *validation.ValidationResult) {
	if findings == nil {
		return
	}
	for _, f := range findings.Errors {
		fields := []zap.Field{zap.String("rule", f.Rule)}
		if f.Line > 0 {
			fields = append(fields, zap.Int("line", f.Line))
		}
		if f.Severity == validation.SeverityError {
			logger.Error(f.Message, fields...)
		} else {
			logger.Warn(f.Message, fields...)
		}
	}
}

func countRule(findings *validation.ValidationResult, rule string) int {
	if findings == nil {
		return 0
	}
	n := 0
	for _, f := range findings.Errors {
		if f.Rule == rule {
			n++
		}
	}
	return n
}

func printSections(out io.Writer, result filler.Result) {
	for _, s := range result.Sections {
		fmt.Fprintf(out, "Section '%s': %d placed", s.Section, len(s.Placed))
		if len(s.Skipped) > 0 {
			fmt.Fprintf(out, ", %d skipped", len(s.Skipped))
		}
		fmt.Fprintln(out)
		for _, skip := range s.Skipped {
			fmt.Fprintf(out, "  WARNING: no more room in section '%s'. Item '%s' not inserted.\n",
				skip.Section, skip.Item.Description)
		}
	}
}

func writeReports(report *fillReport, cfg *config.Config, start time.Time, dryRun bool) error {
	var skips []utils.SkipEntry
	for _, s := range report.Result.Skipped() {
		skips = append(skips, utils.SkipEntry{
			Section:     string(s.Section),
			Description: s.Item.Description,
			Grade:       s.Item.Grade,
			Reason:      s.Reason,
		})
	}

	skipPath, err := utils.WriteSkipReport(skips, cfg.ReportDir, report.RunID)
	if err != nil {
		return err
	}
	report.SkipReport = skipPath

	summary := utils.RunSummary{
		RunID:        report.RunID,
		StartTime:    start,
		EndTime:      time.Now(),
		TablePath:    cfg.TablePath,
		WorkbookPath: cfg.WorkbookPath,
		SheetName:    report.SheetName,
		DryRun:       dryRun,
		BackupPath:   report.BackupPath,
		ItemsRead:    report.Items,
		RowsDropped:  countRule(report.Findings, validation.RuleNumeric),
		ItemsPlaced:  report.Result.Stats.ItemsPlaced,
		ItemsSkipped: report.Result.Stats.ItemsSkipped,
	}
	for _, s := range report.Result.Sections {
		rows := make([]int, 0, len(s.Placed))
		for _, p := range s.Placed {
			rows = append(rows, p.Row)
		}
		summary.Sections = append(summary.Sections, utils.SectionSummary{
			Section: string(s.Section),
			Placed:  len(s.Placed),
			Skipped: len(s.Skipped),
			Rows:    rows,
		})
	}
	if report.Findings != nil {
		for _, f := range report.Findings.Errors {
			summary.Findings = append(summary.Findings, f.Error())
		}
	}

	summaryPath, err := utils.WriteSummaryLog(summary, cfg.ReportDir)
	if err != nil {
		return err
	}
	report.SummaryPath = summaryPath
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringVar(&fillTable, "table", "", "Materials table (.docx, .csv or .xlsx)")
	fillCmd.Flags().StringVar(&fillWorkbook, "workbook", "", "Takeoff workbook to fill")
	fillCmd.Flags().StringVar(&fillSheet, "sheet", "", "Sheet to fill (default: the active sheet)")
	fillCmd.Flags().IntVar(&fillFirstRow, "first-row", 4, "First data row below the sheet header")
	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "Compute the placements without saving the workbook")
	fillCmd.Flags().BoolVar(&fillNoBackup, "no-backup", false, "Do not back up the workbook before saving")
}
