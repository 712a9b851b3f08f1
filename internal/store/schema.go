package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
)

const currentSchemaVersion = 1

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

const metaTable = `
CREATE TABLE IF NOT EXISTS catalog_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const recipesTable = `
CREATE TABLE IF NOT EXISTS recipes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	position INTEGER UNIQUE NOT NULL,
	content_hash TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	tags TEXT NOT NULL,
	url TEXT NOT NULL,
	image_url TEXT NOT NULL,
	synced_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_recipes_hash ON recipes(content_hash);
`

const embeddingCacheTable = `
CREATE TABLE IF NOT EXISTS embedding_cache (
	content_hash TEXT NOT NULL,
	model TEXT NOT NULL,
	embedding BLOB NOT NULL,
	created_at TEXT DEFAULT (datetime('now')),
	PRIMARY KEY (content_hash, model)
);
`

// initSchema initializes the database schema.
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		version = 0
	} else if err != nil {
		return fmt.Errorf("failed to check schema version: %w", err)
	}

	if version >= currentSchemaVersion {
		log.Debug("Schema is up to date", "version", version)
		return nil
	}

	log.Debug("Migrating schema", "from", version, "to", currentSchemaVersion)

	if version < 1 {
		if err := migrateV1(db); err != nil {
			return fmt.Errorf("failed to migrate to v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema. The vector table is created on the
// first sync, once the embedding dimensions are known.
func migrateV1(db *sql.DB) error {
	log.Debug("Applying migration v1")

	for _, table := range []string{metaTable, recipesTable, embeddingCacheTable} {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", 1); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ensureVectorTable makes sure recipe_vectors exists with the given
// dimensions, recreating it when the dimensions changed.
func ensureVectorTable(db execer, dimensions int) error {
	current, err := getMeta(db, "embedding_dimensions")
	if err != nil {
		return err
	}

	var exists string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='recipe_vectors'`).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check vector table: %w", err)
	}

	if exists != "" && current == strconv.Itoa(dimensions) {
		return nil
	}

	if exists != "" {
		log.Debug("Recreating vector table", "from", current, "to", dimensions)
		if _, err := db.Exec("DROP TABLE recipe_vectors"); err != nil {
			return fmt.Errorf("failed to drop vector table: %w", err)
		}
	}

	_, err = db.Exec(fmt.Sprintf(`
		CREATE VIRTUAL TABLE recipe_vectors USING vec0(
			recipe_id INTEGER PRIMARY KEY,
			embedding float[%d] distance_metric=l2
		);
	`, dimensions))
	if err != nil {
		return fmt.Errorf("failed to create vector table: %w", err)
	}
	return nil
}

func getMeta(db execer, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM catalog_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func setMeta(db execer, key, value string) error {
	if _, err := db.Exec("INSERT OR REPLACE INTO catalog_meta (key, value) VALUES (?, ?)", key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
