package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

func init() {
	// Register sqlite-vec extension
	sqlite_vec.Auto()
}

// SQLiteStore implements the Store interface using SQLite and sqlite-vec.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the catalog at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("Opened SQLite catalog", "path", dbPath)

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceRecipes replaces the catalog contents with recipes and caches their embeddings.
func (s *SQLiteStore) ReplaceRecipes(recipes []recipe.Recipe, info EmbeddingInfo) error {
	if len(recipes) > 0 && info.Dimensions < 1 {
		return fmt.Errorf("embedding dimensions are required")
	}
	for i, r := range recipes {
		if len(r.Embedding) != info.Dimensions {
			return fmt.Errorf("recipe %d (%q) has %d-dimensional embedding, expected %d", i, r.Title, len(r.Embedding), info.Dimensions)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(recipes) > 0 {
		if err := ensureVectorTable(tx, info.Dimensions); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM recipe_vectors"); err != nil {
			return fmt.Errorf("failed to clear vectors: %w", err)
		}
	} else {
		if _, err := tx.Exec("DROP TABLE IF EXISTS recipe_vectors"); err != nil {
			return fmt.Errorf("failed to drop vector table: %w", err)
		}
		info.Dimensions = 0
	}

	if _, err := tx.Exec("DELETE FROM recipes"); err != nil {
		return fmt.Errorf("failed to clear recipes: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, r := range recipes {
		tags, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags for recipe %d: %w", i, err)
		}
		hash := recipe.ContentHash(r)

		result, err := tx.Exec(`
			INSERT INTO recipes (position, content_hash, title, description, category, tags, url, image_url, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, i, hash, r.Title, r.Description, r.Category, string(tags), r.URL, r.ImageURL, now)
		if err != nil {
			return fmt.Errorf("failed to insert recipe %d: %w", i, err)
		}
		id, _ := result.LastInsertId()

		blob := serializeEmbedding(r.Embedding)
		if _, err := tx.Exec("INSERT INTO recipe_vectors (recipe_id, embedding) VALUES (?, ?)", id, blob); err != nil {
			return fmt.Errorf("failed to insert vector for recipe %d: %w", i, err)
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO embedding_cache (content_hash, model, embedding, created_at)
			VALUES (?, ?, ?, ?)
		`, hash, info.Model, blob, now); err != nil {
			return fmt.Errorf("failed to cache embedding for recipe %d: %w", i, err)
		}
	}

	for key, value := range map[string]string{
		"embedding_provider":   info.Provider,
		"embedding_model":      info.Model,
		"embedding_dimensions": strconv.Itoa(info.Dimensions),
		"synced_at":            now,
	} {
		if err := setMeta(tx, key, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}

	log.Debug("Replaced catalog", "recipes", len(recipes), "model", info.Model)
	return nil
}

// ListRecipes returns the catalog in position order.
func (s *SQLiteStore) ListRecipes() ([]recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, err := getMeta(s.db, "embedding_model")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT r.title, r.description, r.category, r.tags, r.url, r.image_url, e.embedding
		FROM recipes r
		LEFT JOIN embedding_cache e ON e.content_hash = r.content_hash AND e.model = ?
		ORDER BY r.position ASC
	`, model)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []recipe.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}

	return recipes, rows.Err()
}

// CachedEmbeddings looks up cached vectors by content hash.
func (s *SQLiteStore) CachedEmbeddings(model string, hashes []string) (map[string][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stmt, err := s.db.Prepare("SELECT embedding FROM embedding_cache WHERE content_hash = ? AND model = ?")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare cache lookup: %w", err)
	}
	defer stmt.Close()

	found := make(map[string][]float32)
	for _, hash := range hashes {
		if _, ok := found[hash]; ok {
			continue
		}
		var blob []byte
		err := stmt.QueryRow(hash, model).Scan(&blob)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cached embedding: %w", err)
		}
		found[hash] = deserializeEmbedding(blob)
	}

	return found, nil
}

// PutEmbeddings stores vectors in the cache.
func (s *SQLiteStore) PutEmbeddings(model string, vectors map[string][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for hash, vec := range vectors {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO embedding_cache (content_hash, model, embedding, created_at)
			VALUES (?, ?, ?, ?)
		`, hash, model, serializeEmbedding(vec), now); err != nil {
			return fmt.Errorf("failed to cache embedding: %w", err)
		}
	}

	return tx.Commit()
}

// Search performs an L2 nearest-neighbour search over the catalog.
func (s *SQLiteStore) Search(query []float32, k int) ([]SearchResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dims, err := getMeta(s.db, "embedding_dimensions")
	if err != nil {
		return nil, err
	}
	if dims == "" || dims == "0" {
		return []SearchResult{}, nil
	}
	if want, _ := strconv.Atoi(dims); want != len(query) {
		return nil, fmt.Errorf("query has %d dimensions, catalog has %d", len(query), want)
	}

	rows, err := s.db.Query(`
		WITH knn AS (
			SELECT recipe_id, distance
			FROM recipe_vectors
			WHERE embedding MATCH ?
				AND k = ?
		)
		SELECT
			r.position, r.title, r.description, r.category, r.tags, r.url, r.image_url,
			knn.distance
		FROM knn
		JOIN recipes r ON r.id = knn.recipe_id
		ORDER BY knn.distance ASC, r.position ASC
	`, serializeEmbedding(query), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var res SearchResult
		var tags string
		if err := rows.Scan(
			&res.Position, &res.Recipe.Title, &res.Recipe.Description, &res.Recipe.Category,
			&tags, &res.Recipe.URL, &res.Recipe.ImageURL,
			&res.Distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &res.Recipe.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

// Stats returns catalog statistics.
func (s *SQLiteStore) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM recipes").Scan(&stats.Recipes); err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM embedding_cache").Scan(&stats.CachedEmbeddings); err != nil {
		return nil, fmt.Errorf("failed to count cached embeddings: %w", err)
	}

	var err error
	if stats.Embedding.Provider, err = getMeta(s.db, "embedding_provider"); err != nil {
		return nil, err
	}
	if stats.Embedding.Model, err = getMeta(s.db, "embedding_model"); err != nil {
		return nil, err
	}
	dims, err := getMeta(s.db, "embedding_dimensions")
	if err != nil {
		return nil, err
	}
	stats.Embedding.Dimensions, _ = strconv.Atoi(dims)

	syncedAt, err := getMeta(s.db, "synced_at")
	if err != nil {
		return nil, err
	}
	stats.SyncedAt, _ = time.Parse(time.RFC3339, syncedAt)

	return &stats, nil
}

func scanRecipe(rows *sql.Rows) (recipe.Recipe, error) {
	var r recipe.Recipe
	var tags string
	var blob []byte
	if err := rows.Scan(&r.Title, &r.Description, &r.Category, &tags, &r.URL, &r.ImageURL, &blob); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to scan recipe: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to decode tags: %w", err)
	}
	if len(blob) > 0 {
		r.Embedding = deserializeEmbedding(blob)
	}
	return r, nil
}

// serializeEmbedding converts a float32 slice to the little-endian blob sqlite-vec expects.
func serializeEmbedding(embedding []float32) []byte {
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func deserializeEmbedding(blob []byte) []float32 {
	out := make([]float32, len(blob)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out
}
