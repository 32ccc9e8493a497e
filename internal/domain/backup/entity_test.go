// internal/domain/backup/entity_test.go
package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFilename(t *testing.T) {
	tests := []struct {
		name string
		want BackupType
	}{
		{"db-20260829-120000.dump", TypeDatabase},
		{"snapshot.psql", TypeDatabase},
		{"legacy-export.sql", TypeDatabase},
		{"DB-BACKUP.SQL", TypeDatabase},
		{"media-20260829-120000.tar.gz", TypeMedia},
		{"uploads.tar", TypeMedia},
		{"photos.tgz", TypeMedia},
		{"media-export", TypeMedia},
		{"nightly", TypeDatabase},
		{"", TypeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFilename(tt.name))
		})
	}
}
