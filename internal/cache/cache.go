package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

const ddl = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS embeddings (
    key        TEXT PRIMARY KEY,
    model      TEXT NOT NULL,
    dim        INTEGER NOT NULL,
    vector     BLOB NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Cache persists embeddings keyed by (model, text) so re-indexing an
// unchanged tree never re-embeds the same component text. Fallback
// vectors are never cached; a recovered backend must get another try.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database and initializes the schema.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached vector for (model, text), if present.
func (c *Cache) Get(model, text string) ([]float32, bool, error) {
	var blob []byte
	var dim int
	err := c.db.QueryRow("SELECT vector, dim FROM embeddings WHERE key = ?", key(model, text)).
		Scan(&blob, &dim)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	vec, err := decodeVector(blob, dim)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Put stores a vector for (model, text), replacing any previous entry.
func (c *Cache) Put(model, text string, vec []float32) error {
	blob, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return fmt.Errorf("serialize vector: %w", err)
	}
	_, err = c.db.Exec(
		"INSERT INTO embeddings (key, model, dim, vector) VALUES (?, ?, ?, ?) ON CONFLICT(key) DO UPDATE SET model = excluded.model, dim = excluded.dim, vector = excluded.vector",
		key(model, text), model, len(vec), blob,
	)
	return err
}

func (c *Cache) Close() error { return c.db.Close() }

func key(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// decodeVector reads the little-endian float32 layout produced by
// SerializeFloat32.
func decodeVector(blob []byte, dim int) ([]float32, error) {
	if len(blob) != dim*4 {
		return nil, fmt.Errorf("vector blob is %d bytes, want %d", len(blob), dim*4)
	}
	vec := make([]float32, dim)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}
