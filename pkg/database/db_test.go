package database

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "data.db")}

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	// second run must be a no-op
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&n))
	assert.GreaterOrEqual(t, n, 4)
}

func TestConfigFor(t *testing.T) {
	assert.Equal(t, "/tmp/x.db", ConfigFor("/tmp/x.db").Path)
	assert.Equal(t, DefaultConfig(), ConfigFor(""))
	assert.True(t, strings.HasSuffix(DefaultConfig().Path, filepath.Join(".houseoflove", "data.db")))
}

func TestDSNCarriesPragmas(t *testing.T) {
	dsn := Config{Path: "/data/shop.db"}.DSN()
	assert.Equal(t, "file:/data/shop.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL", dsn)

	dsn = Config{Path: "x.db", BusyTimeout: 250 * time.Millisecond}.DSN()
	assert.Contains(t, dsn, "_busy_timeout=250")
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "fk.db")})
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(3)

	for range 3 {
		var on int
		require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&on))
		assert.Equal(t, 1, on)
	}
}
