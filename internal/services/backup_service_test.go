package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/database"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupLatestWithoutDumps(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBackupService(db, BackupConfig{Dir: filepath.Join(t.TempDir(), "missing")})

	_, err := svc.Latest(context.Background())
	assertAppError(t, err, models.KindNotFound, models.ErrNoBackups)
}

func TestSQLiteBackup(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	svc := NewBackupService(f.db, BackupConfig{Dir: dir, Database: database.DatabaseConfig{Driver: "sqlite"}}).(*backupService)
	svc.now = fixedClock

	first, err := svc.CreateBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "teezy_backup_20240301_120000.sqlite", first.Name)
	assert.Positive(t, first.Size)

	// a second dump in the same second does not overwrite the first
	second, err := svc.CreateBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "teezy_backup_20240301_120000_1.sqlite", second.Name)

	svc.now = func() time.Time { return testNow.Add(time.Hour) }
	third, err := svc.CreateBackup(context.Background())
	require.NoError(t, err)

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, third.Name, latest.Name)
	assert.Equal(t, filepath.Join(dir, third.Name), latest.Path)
}

func TestPostgresBackupInvokesPGDump(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	svc := NewBackupService(db, BackupConfig{
		Dir:        dir,
		PGDumpPath: "/usr/bin/pg_dump",
		Database: database.DatabaseConfig{
			Driver: "postgres", Host: "db", Port: "5432", User: "teezy", Password: "pw", Name: "teezy_loyalty",
		},
	}).(*backupService)
	svc.now = fixedClock

	var gotName string
	var gotArgs, gotEnv []string
	svc.run = func(ctx context.Context, name string, args, env []string) ([]byte, error) {
		gotName, gotArgs, gotEnv = name, args, env
		return nil, os.WriteFile(args[len(args)-2], []byte("PGDMP"), 0o600)
	}

	file, err := svc.CreateBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "teezy_backup_20240301_120000.dump", file.Name)
	assert.Equal(t, "/usr/bin/pg_dump", gotName)
	assert.Equal(t, "-F c", strings.Join(gotArgs[6:8], " "))
	assert.Equal(t, "teezy_loyalty", gotArgs[len(gotArgs)-1])
	assert.Contains(t, gotEnv, "PGPASSWORD=pw")

	svc.run = func(ctx context.Context, name string, args, env []string) ([]byte, error) {
		return []byte("connection refused"), errors.New("exit status 1")
	}
	_, err = svc.CreateBackup(context.Background())
	assertAppError(t, err, models.KindInfrastructure, models.ErrBackupFailed)
	assert.Contains(t, err.Error(), "connection refused")
}
