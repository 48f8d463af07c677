// =============================================================================
// BOM Steel Filler - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a fill run:
//   - Pre-run check that the takeoff workbook can be written
//   - Backup copy of the workbook before it is saved
//   - Retention of old backups
//   - Skip report and run summary files
//
// BACKUP STRATEGY:
//   - The workbook is copied, never moved, into the backup directory
//   - Backup names carry the workbook name, a timestamp and a short id, so
//     several runs in the same second never collide
//   - Only the newest backups of each workbook are kept
//
// =============================================================================

package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrFileLocked is returned when the workbook is open in another program or
// cannot be opened for writing.
var ErrFileLocked = errors.New("workbook is open or not writable")

const reportRule = "================================================================================\n"

// =============================================================================
// PRE-RUN CHECKS
// =============================================================================

// lockFileNames lists the owner files office suites create next to an open
// document.
func lockFileNames(path string) []string {
	dir, base := filepath.Split(path)
	return []string{
		// Excel
		filepath.Join(dir, "~$"+base),
		// LibreOffice
		filepath.Join(dir, ".~lock."+base+"#"),
	}
}

// CheckWritable verifies, before any parsing, that the workbook exists and
// can be opened for writing.
//
// RETURNS:
//   - nil when the workbook can be written.
//   - An error wrapping os.ErrNotExist when the file is missing.
//   - An error wrapping ErrFileLocked when an office lock file is present or
//     the file cannot be opened in append mode.
func CheckWritable(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access workbook %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("workbook %s is a directory", path)
	}

	for _, lock := range lockFileNames(path) {
		if FileExists(lock) {
			return fmt.Errorf("%w: %s (lock file %s)", ErrFileLocked, path, filepath.Base(lock))
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFileLocked, path, err)
	}
	return f.Close()
}

// =============================================================================
// BACKUPS
// =============================================================================

// BackupName returns the file name used for a backup of workbookPath.
//
// EXAMPLE:
//   "TABELA-DE-AÇO R8.xlsx" -> "TABELA-DE-AÇO R8_20240115_143022_a1b2c3d4.xlsx"
func BackupName(workbookPath string, now time.Time) string {
	base := filepath.Base(workbookPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	id := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("%s_%s_%s%s", stem, now.Format("20060102_150405"), id, ext)
}

// backupPattern matches exactly the names BackupName produces for
// workbookPath, so "foo.xlsx" never claims the backups of "foo_bar.xlsx".
func backupPattern(workbookPath string) *regexp.Regexp {
	base := filepath.Base(workbookPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `_\d{8}_\d{6}_[0-9a-f]{8}` + regexp.QuoteMeta(ext) + `$`)
}

// BackupWorkbook copies the workbook into backupDir and returns the backup
// path.
func BackupWorkbook(workbookPath, backupDir string) (string, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := filepath.Join(backupDir, BackupName(workbookPath, time.Now()))
	if err := copyFile(workbookPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up workbook: %w", err)
	}

	return backupPath, nil
}

// CleanOldBackups keeps the newest keep backups of workbookPath in backupDir
// and removes the rest. keep <= 0 keeps everything.
//
// RETURNS:
//   - The number of files removed.
//   - An error if the directory cannot be read or a file cannot be removed.
func CleanOldBackups(backupDir, workbookPath string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(backupDir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list backups: %w", err)
	}

	pattern := backupPattern(workbookPath)

	type backup struct {
		path    string
		modTime time.Time
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || !pattern.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{filepath.Join(backupDir, e.Name()), info.ModTime()})
	}

	if len(backups) <= keep {
		return 0, nil
	}

	// Newest first; names break ties since they embed the timestamp.
	sort.Slice(backups, func(i, j int) bool {
		if backups[i].modTime.Equal(backups[j].modTime) {
			return backups[i].path > backups[j].path
		}
		return backups[i].modTime.After(backups[j].modTime)
	})

	removed := 0
	for _, b := range backups[keep:] {
		if err := os.Remove(b.path); err != nil {
			return removed, fmt.Errorf("failed to remove backup %s: %w", b.path, err)
		}
		removed++
	}
	return removed, nil
}

// =============================================================================
// SKIP REPORT
// =============================================================================

// SkipEntry is one item that was not written to the sheet.
type SkipEntry struct {
	Section     string
	Description string
	Grade       string
	Reason      string
}

// WriteSkipReport writes the items that found no free row. Nothing is written
// when entries is empty.
//
// RETURNS:
//   - The path to the report, or "" when nothing was written.
//   - An error if writing fails.
func WriteSkipReport(entries []SkipEntry, outputDir, runID string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	reportPath := filepath.Join(outputDir, reportFileName("skip_report", runID))
	file, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("failed to create skip report: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "BOM Steel Filler - Skipped Items\n"+
		"Generated: %s\n"+
		"Run ID:    %s\n"+
		"Total:     %d\n"+
		reportRule+"\n",
		time.Now().Format("2006-01-02 15:04:05"),
		runID,
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Item #%d\n"+
			"  Section:     %s\n"+
			"  Description: %s\n",
			i+1, entry.Section, entry.Description)
		if entry.Grade != "" {
			fmt.Fprintf(writer, "  Grade:       %s\n", entry.Grade)
		}
		fmt.Fprintf(writer, "  Reason:      %s\n\n", entry.Reason)
	}

	writer.WriteString(reportRule + "End of Skip Report\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush skip report: %w", err)
	}

	return reportPath, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// SectionSummary holds the counts of one section.
type SectionSummary struct {
	Section string
	Placed  int
	Skipped int
	Rows    []int
}

// RunSummary contains summary information about a fill run.
type RunSummary struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	TablePath    string
	WorkbookPath string
	SheetName    string
	DryRun       bool
	BackupPath   string
	ItemsRead    int
	RowsDropped  int
	ItemsPlaced  int
	ItemsSkipped int
	Sections     []SectionSummary
	Findings     []string
}

// WriteSummaryLog writes a run summary file.
//
// PARAMETERS:
//   - summary: The run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	summaryPath := filepath.Join(outputDir, reportFileName("run_summary", summary.RunID))
	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	mode := "write"
	if summary.DryRun {
		mode = "dry-run"
	}

	fmt.Fprintf(writer, "BOM Steel Filler - Run Summary\n"+
		reportRule+"\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Mode:           %s\n"+
		"  Table:          %s\n"+
		"  Workbook:       %s\n"+
		"  Sheet:          %s\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		mode,
		summary.TablePath,
		summary.WorkbookPath,
		summary.SheetName)
	if summary.BackupPath != "" {
		fmt.Fprintf(writer, "  Backup:         %s\n", summary.BackupPath)
	}

	fmt.Fprintf(writer, "\nStatistics:\n"+
		"  Items Read:     %d\n"+
		"  Rows Dropped:   %d\n"+
		"  Items Placed:   %d\n"+
		"  Items Skipped:  %d\n\n",
		summary.ItemsRead,
		summary.RowsDropped,
		summary.ItemsPlaced,
		summary.ItemsSkipped)

	if len(summary.Sections) > 0 {
		writer.WriteString("Sections:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, s := range summary.Sections {
			fmt.Fprintf(writer, "  %-22s placed %3d  skipped %3d  rows %s\n",
				s.Section, s.Placed, s.Skipped, formatRows(s.Rows))
		}
		writer.WriteString("\n")
	}

	if len(summary.Findings) > 0 {
		writer.WriteString("Table Findings:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Findings {
			fmt.Fprintf(writer, "  %s\n", f)
		}
		writer.WriteString("\n")
	}

	writer.WriteString(reportRule + "End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func reportFileName(kind, runID string) string {
	id := runID
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("%s_%s", kind, time.Now().Format("20060102_150405"))
	if id != "" {
		name += "_" + id
	}
	return name + ".txt"
}

func formatRows(rows []int) string {
	if len(rows) == 0 {
		return "-"
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprint(r)
	}
	return strings.Join(parts, ",")
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
