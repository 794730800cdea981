package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	_ "modernc.org/sqlite"
)

// sqlitePragmas favour concurrent API reads while the worker writes sync
// records: WAL journaling and a busy timeout instead of SQLITE_BUSY errors.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"

// openSQLite opens the pure-Go SQLite driver, creating the parent
// directory when needed.
func openSQLite(cfg domain.RepositoryConfig) (*sql.DB, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = "./primacy.db"
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?"+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database %s: %w", path, err)
	}
	return db, nil
}
