package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectRejectsNonPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{"empty", ""},
		{"mysql", "mysql://root@localhost/gateway"},
		{"sqlite path", "file:gateway.db"},
		{"bare host", "localhost:5432"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := Connect(context.Background(), tt.dsn)
			require.Nil(t, pool)
			require.ErrorContains(t, err, "unsupported or missing DATABASE_DSN")
		})
	}
}
