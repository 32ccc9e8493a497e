// internal/domain/backup/service.go
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service creates, restores and manages on-disk backups. Database dumps
// go through pg_dump/pg_restore and media archives through tar, all
// bounded by the configured tool timeout.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new backup service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListBackups returns all backup records, newest first
func (s *Service) ListBackups() ([]Record, error) {
	var records []Record
	if err := s.db.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return records, nil
}

// GetBackup retrieves one backup record
func (s *Service) GetBackup(id uint) (*Record, error) {
	var record Record
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("backup not found")
		}
		return nil, fmt.Errorf("failed to retrieve backup: %w", err)
	}
	return &record, nil
}

// CreateDatabaseBackup runs pg_dump in custom format and records the
// resulting file
func (s *Service) CreateDatabaseBackup(ctx context.Context) (*Record, error) {
	if err := os.MkdirAll(s.config.Backup.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("db-%s.dump", time.Now().Format("20060102-150405"))
	path := filepath.Join(s.config.Backup.Dir, name)

	ctx, cancel := context.WithTimeout(ctx, s.config.Backup.ToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.config.Backup.PgDumpPath,
		"--format=custom",
		"--file="+path,
		"--host="+s.config.Database.Host,
		"--port="+s.config.Database.Port,
		"--username="+s.config.Database.User,
		"--dbname="+s.config.Database.Name,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+s.config.Database.Password)

	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("pg_dump failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return s.record(name, path, TypeDatabase)
}

// CreateMediaBackup archives the media directory with tar
func (s *Service) CreateMediaBackup(ctx context.Context) (*Record, error) {
	if _, err := os.Stat(s.config.Upload.MediaDir); err != nil {
		return nil, fmt.Errorf("media directory is not available: %w", err)
	}
	if err := os.MkdirAll(s.config.Backup.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("media-%s.tar.gz", time.Now().Format("20060102-150405"))
	path := filepath.Join(s.config.Backup.Dir, name)

	ctx, cancel := context.WithTimeout(ctx, s.config.Backup.ToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.config.Backup.TarPath,
		"-czf", path,
		"-C", filepath.Dir(s.config.Upload.MediaDir),
		filepath.Base(s.config.Upload.MediaDir),
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("tar failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return s.record(name, path, TypeMedia)
}

// RestoreBackup replays a backup: pg_restore for database dumps, tar
// extraction for media archives. The backing file must still exist.
func (s *Service) RestoreBackup(ctx context.Context, id uint) error {
	record, err := s.GetBackup(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(record.FilePath); err != nil {
		return fmt.Errorf("backup file is missing: %s", record.Name)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Backup.ToolTimeout)
	defer cancel()

	var cmd *exec.Cmd
	switch record.BackupType {
	case TypeDatabase:
		if strings.HasSuffix(strings.ToLower(record.FilePath), ".sql") {
			cmd = exec.CommandContext(ctx, s.config.Backup.PsqlPath,
				"--host="+s.config.Database.Host,
				"--port="+s.config.Database.Port,
				"--username="+s.config.Database.User,
				"--dbname="+s.config.Database.Name,
				"--file="+record.FilePath,
			)
		} else {
			cmd = exec.CommandContext(ctx, s.config.Backup.PgRestorePath,
				"--clean",
				"--if-exists",
				"--host="+s.config.Database.Host,
				"--port="+s.config.Database.Port,
				"--username="+s.config.Database.User,
				"--dbname="+s.config.Database.Name,
				record.FilePath,
			)
		}
		cmd.Env = append(os.Environ(), "PGPASSWORD="+s.config.Database.Password)
	case TypeMedia:
		cmd = exec.CommandContext(ctx, s.config.Backup.TarPath,
			"-xzf", record.FilePath,
			"-C", filepath.Dir(s.config.Upload.MediaDir),
		)
	default:
		return fmt.Errorf("unknown backup type: %s", record.BackupType)
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("restore failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	logrus.WithFields(logrus.Fields{
		"backup": record.Name,
		"type":   record.BackupType,
	}).Info("Backup restored")
	return nil
}

// OpenBackup opens the backing file for streaming to a download response
func (s *Service) OpenBackup(id uint) (*Record, *os.File, error) {
	record, err := s.GetBackup(id)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(record.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("backup file is missing: %s", record.Name)
	}
	return record, file, nil
}

// DeleteBackup removes both the file and the record. A missing file is
// not an error; the record is stale and should go regardless.
func (s *Service) DeleteBackup(id uint) error {
	record, err := s.GetBackup(id)
	if err != nil {
		return err
	}

	if err := os.Remove(record.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove backup file: %w", err)
	}
	if err := s.db.Delete(&Record{}, record.ID).Error; err != nil {
		return fmt.Errorf("failed to delete backup record: %w", err)
	}
	return nil
}

func (s *Service) record(name, path string, backupType BackupType) (*Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}

	record := Record{
		Name:       name,
		FilePath:   path,
		BackupType: backupType,
		Size:       info.Size(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to record backup: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"backup": record.Name,
		"type":   record.BackupType,
		"size":   record.Size,
	}).Info("Backup created")
	return &record, nil
}
