package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"dernek/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.SeedFile = "seed.yaml"

	bc, err := FromAppConfig(&cfg)
	require.NoError(t, err)
	require.Equal(t, MemoryBackend, bc.Type)
	require.Equal(t, "seed.yaml", bc.SeedFile)

	cfg.DataBackend = "sheets"
	_, err = FromAppConfig(&cfg)
	require.Error(t, err)

	_, err = FromAppConfig(nil)
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "sheets"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "dernek"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("events:\n  - id: e1\n    title: Genel Kurul\n    date: \"2024-05-25\"\n"), 0o644))

	result, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	require.NoError(t, err)
	defer result.Close()

	require.Nil(t, result.Notifier)
	require.NoError(t, result.Ping(context.Background()))

	events, err := result.Store.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestCreateSQLiteBackend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dernek.db")

	result, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	require.NoError(t, err)

	require.NoError(t, result.Ping(context.Background()))
	people, err := result.Store.FetchPeople(context.Background())
	require.NoError(t, err)
	require.Empty(t, people)
	require.NoError(t, result.Close())
}
