package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/database"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const backupPrefix = "teezy_backup_"

// BackupFile describes a dump on disk
type BackupFile struct {
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupConfig locates the dump directory and the database being dumped
type BackupConfig struct {
	Dir        string
	PGDumpPath string
	Database   database.DatabaseConfig
}

// commandRunner runs an external program and returns its combined output
type commandRunner func(ctx context.Context, name string, args, env []string) ([]byte, error)

func execRunner(ctx context.Context, name string, args, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}

type BackupService interface {
	// CreateBackup dumps the whole database to a new timestamped file
	CreateBackup(ctx context.Context) (*BackupFile, error)
	// Latest returns the most recent dump
	Latest(ctx context.Context) (*BackupFile, error)
}

type backupService struct {
	db  *gorm.DB
	cfg BackupConfig
	run commandRunner
	now func() time.Time
}

func NewBackupService(db *gorm.DB, cfg BackupConfig) BackupService {
	return &backupService{db: db, cfg: cfg, run: execRunner, now: time.Now}
}

func (s *backupService) CreateBackup(ctx context.Context) (*BackupFile, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o750); err != nil {
		return nil, models.NewInfrastructureError(models.ErrBackupFailed, err)
	}

	ext := ".dump"
	if s.cfg.Database.IsSQLite() {
		ext = ".sqlite"
	}
	path := s.nextPath(ext)

	var err error
	if s.cfg.Database.IsSQLite() {
		err = s.db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error
	} else {
		err = s.pgDump(ctx, path)
	}
	if err != nil {
		log.WithError(err).WithField("path", path).Error("Backup failed")
		return nil, models.NewInfrastructureError(models.ErrBackupFailed, err)
	}

	file, err := describeBackup(path)
	if err != nil {
		return nil, models.NewInfrastructureError(models.ErrBackupFailed, err)
	}
	log.WithFields(log.Fields{"name": file.Name, "size": file.Size}).Info("Backup created")
	return file, nil
}

// nextPath picks a file name that does not exist yet; two dumps in the same second get a suffix
func (s *backupService) nextPath(ext string) string {
	base := backupPrefix + s.now().UTC().Format("20060102_150405")
	path := filepath.Join(s.cfg.Dir, base+ext)
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(s.cfg.Dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
	return path
}

func (s *backupService) pgDump(ctx context.Context, path string) error {
	db := s.cfg.Database
	args := []string{
		"-h", db.Host,
		"-p", db.Port,
		"-U", db.User,
		"-F", "c",
		"-f", path,
		db.Name,
	}
	env := []string{"PGPASSWORD=" + db.Password}
	output, err := s.run(ctx, s.cfg.PGDumpPath, args, env)
	if err != nil {
		return fmt.Errorf("pg_dump: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (s *backupService) Latest(ctx context.Context) (*BackupFile, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, models.NewInfrastructureError(models.ErrBackupFailed, err)
	}

	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix)
	})
	if len(names) == 0 {
		return nil, models.NewNotFoundError(models.ErrNoBackups, "no backups available")
	}

	// Names embed a sortable timestamp
	latest := lo.MaxBy(names, func(a, b string) bool { return a > b })
	file, err := describeBackup(filepath.Join(s.cfg.Dir, latest))
	if err != nil {
		return nil, models.NewInfrastructureError(models.ErrBackupFailed, err)
	}
	return file, nil
}

func describeBackup(path string) (*BackupFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &BackupFile{
		Name:      info.Name(),
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime().UTC(),
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
