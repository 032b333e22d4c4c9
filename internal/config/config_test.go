package config_test

import (
	"database/sql"
	"testing"

	"staffsync/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLeaveConfig_IsolationLevel(t *testing.T) {
	cases := map[string]sql.IsolationLevel{
		"":                sql.LevelReadCommitted,
		"read_committed":  sql.LevelReadCommitted,
		"Serializable":    sql.LevelSerializable,
		"repeatable_read": sql.LevelRepeatableRead,
	}
	for name, want := range cases {
		got, err := config.LeaveConfig{TxIsolation: name}.IsolationLevel()
		assert.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := config.LeaveConfig{TxIsolation: "snapshot"}.IsolationLevel()
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Run("success with defaults", func(t *testing.T) {
		t.Setenv("DB_USER", "hr")
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("DB_NAME", "staffsync")
		t.Setenv("JWT_SECRET", "jwt-secret")

		cfg, err := config.Load()

		assert.NoError(t, err)
		assert.Equal(t, "3000", cfg.Server.Port)
		assert.Equal(t, "read_committed", cfg.Leave.TxIsolation)
		assert.Equal(t, 50, cfg.Kafka.BatchSize)
		assert.Contains(t, cfg.DB.DSN(), "dbname=staffsync")
	})

	t.Run("negative invalid isolation", func(t *testing.T) {
		t.Setenv("DB_USER", "hr")
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("DB_NAME", "staffsync")
		t.Setenv("JWT_SECRET", "jwt-secret")
		t.Setenv("LEAVE_TX_ISOLATION", "snapshot")

		_, err := config.Load()

		assert.Error(t, err)
	})
}
