package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCheckWritable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabela.xlsx")
	touch(t, path, "data")

	require.NoError(t, CheckWritable(context.Background(), path))

	// Content is untouched by the append-mode probe.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestCheckWritableMissing(t *testing.T) {
	err := CheckWritable(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, ErrFileLocked))
}

func TestCheckWritableLockFiles(t *testing.T) {
	for _, lock := range []string{"~$tabela.xlsx", ".~lock.tabela.xlsx#"} {
		t.Run(lock, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "tabela.xlsx")
			touch(t, path, "data")
			touch(t, filepath.Join(dir, lock), "")

			err := CheckWritable(context.Background(), path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFileLocked))
		})
	}
}

func TestCheckWritableReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	path := filepath.Join(t.TempDir(), "tabela.xlsx")
	touch(t, path, "data")
	require.NoError(t, os.Chmod(path, 0o444))

	err := CheckWritable(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileLocked))
}

func TestCheckWritableCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := CheckWritable(ctx, "whatever.xlsx")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBackupName(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
	name := BackupName("/obra/TABELA-DE-AÇO R8.xlsx", now)

	assert.True(t, strings.HasPrefix(name, "TABELA-DE-AÇO R8_20240115_143022_"), name)
	assert.True(t, strings.HasSuffix(name, ".xlsx"), name)
	assert.NotEqual(t, name, BackupName("/obra/TABELA-DE-AÇO R8.xlsx", now))
	assert.True(t, backupPattern("/obra/TABELA-DE-AÇO R8.xlsx").MatchString(name), name)
}

func TestBackupWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabela.xlsx")
	touch(t, path, "original")

	backupPath, err := BackupWorkbook(path, filepath.Join(dir, "backups"))
	require.NoError(t, err)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	assert.True(t, FileExists(path))
}

func TestCleanOldBackups(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	names := []string{
		"tabela_20240101_000000_aaaaaaaa.xlsx",
		"tabela_20240102_000000_bbbbbbbb.xlsx",
		"tabela_20240103_000000_cccccccc.xlsx",
	}
	for i, name := range names {
		p := filepath.Join(dir, name)
		touch(t, p, "x")
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}
	touch(t, filepath.Join(dir, "outra_20240101_000000_dddddddd.xlsx"), "x")

	removed, err := CleanOldBackups(dir, "/obra/tabela.xlsx", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.False(t, FileExists(filepath.Join(dir, names[0])))
	assert.True(t, FileExists(filepath.Join(dir, names[1])))
	assert.True(t, FileExists(filepath.Join(dir, names[2])))
	assert.True(t, FileExists(filepath.Join(dir, "outra_20240101_000000_dddddddd.xlsx")))

	removed, err = CleanOldBackups(filepath.Join(dir, "absent"), "tabela.xlsx", 1)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCleanOldBackupsIgnoresWorkbooksSharingAPrefix(t *testing.T) {
	dir := t.TempDir()
	own := filepath.Join(dir, "foo_20240102_000000_bbbbbbbb.xlsx")
	other := filepath.Join(dir, "foo_bar_20240101_000000_aaaaaaaa.xlsx")
	stray := filepath.Join(dir, "foo_notes.xlsx")
	touch(t, own, "x")
	touch(t, other, "x")
	touch(t, stray, "x")

	removed, err := CleanOldBackups(dir, "/x/foo.xlsx", 1)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.True(t, FileExists(own))
	assert.True(t, FileExists(other))
	assert.True(t, FileExists(stray))

	removed, err = CleanOldBackups(dir, "/x/foo_bar.xlsx", 1)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.True(t, FileExists(other))
}

func TestWriteSkipReport(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSkipReport(nil, dir, "run")
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteSkipReport([]SkipEntry{
		{Section: "U.s", Description: "U 75x40x2", Grade: "A36", Reason: "no free row left"},
	}, dir, "0123456789abcdef")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "_01234567.txt")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "U 75x40x2")
	assert.Contains(t, string(data), "Total:     1")
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Now()
	path, err := WriteSummaryLog(RunSummary{
		RunID:        "run-1",
		StartTime:    start,
		EndTime:      start.Add(2 * time.Second),
		TablePath:    "lista.docx",
		WorkbookPath: "tabela.xlsx",
		SheetName:    "R8",
		DryRun:       true,
		ItemsRead:    3,
		ItemsPlaced:  2,
		ItemsSkipped: 1,
		Sections: []SectionSummary{
			{Section: "U.s", Placed: 2, Skipped: 1, Rows: []int{4, 5}},
		},
		Findings: []string{"[WARNING] grade reused"},
	}, filepath.Join(t.TempDir(), "reports"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "dry-run")
	assert.Contains(t, out, "rows 4,5")
	assert.Contains(t, out, "Items Placed:   2")
	assert.Contains(t, out, "[WARNING] grade reused")
}
