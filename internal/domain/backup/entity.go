// internal/domain/backup/entity.go
package backup

import (
	"strings"
	"time"
)

// BackupType distinguishes database dumps from media archives
type BackupType string

const (
	TypeDatabase BackupType = "db"
	TypeMedia    BackupType = "media"
)

// Record is one backup artifact on disk
type Record struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	FilePath   string     `gorm:"size:500;not null" json:"file_path"`
	BackupType BackupType `gorm:"size:10;not null" json:"backup_type"`
	Size       int64      `json:"size"` // Bytes
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName overrides the table name
func (Record) TableName() string {
	return "backup_records"
}

// ClassifyFilename infers the backup type from a filename. Database dump
// extensions win; archives count as media; everything else falls back to
// a substring check with database as the default.
func ClassifyFilename(name string) BackupType {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".psql"),
		strings.HasSuffix(lower, ".dump"),
		strings.HasSuffix(lower, ".sql"):
		return TypeDatabase
	case strings.HasSuffix(lower, ".tar"),
		strings.HasSuffix(lower, ".tar.gz"),
		strings.HasSuffix(lower, ".tgz"):
		return TypeMedia
	case strings.Contains(lower, "media"):
		return TypeMedia
	default:
		return TypeDatabase
	}
}
