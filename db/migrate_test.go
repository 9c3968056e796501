package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToPgx5URL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@h:5432/db?sslmode=disable", "pgx5://u:p@h:5432/db?sslmode=disable"},
		{"postgresql://u:p@h/db", "pgx5://u:p@h/db"},
		{"postgres://u:p@h/db?sslmode=disable&pool_max_conns=10", "pgx5://u:p@h/db?sslmode=disable"},
		{"postgres://u:p@h/db?pool_max_conns=10", "pgx5://u:p@h/db"},
		{"pgx5://already/converted", "pgx5://already/converted"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, convertToPgx5URL(tt.in))
		})
	}
}

func TestMigrationFilesArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
