package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/studymate/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
	"github.com/custodia-labs/studymate/internal/core/similarity"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "vectors.db"

// metaDimension is the store_meta key holding the store dimension.
const metaDimension = "dimension"

// Store is a SQLite-backed vector store.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite vector store in the specified data directory.
// If dataDir is empty, defaults to ~/.studymate/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".studymate", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_entries.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration runs one migration and records its version atomically.
func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// Add validates the batch and appends it in a single transaction.
func (s *Store) Add(ctx context.Context, chunks []domain.EmbeddedChunk) ([]domain.IndexEntry, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	dim, err := batchDimension(chunks)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %w", domain.ErrStoreWrite, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stored, err := readDimension(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	switch {
	case stored == 0:
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO store_meta (key, value) VALUES (?, ?)",
			metaDimension, strconv.Itoa(dim)); err != nil {
			return nil, fmt.Errorf("%w: saving dimension: %w", domain.ErrStoreWrite, err)
		}
	case stored != dim:
		return nil, fmt.Errorf("%w: dimension mismatch: store holds %d, batch has %d",
			domain.ErrStoreWrite, stored, dim)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, source, chunk_index, text, dimension, vector, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing insert: %w", domain.ErrStoreWrite, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	added := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		id := uuid.NewString()
		res, err := stmt.ExecContext(ctx, id, c.Metadata.Source, c.Metadata.Index, c.Text,
			len(c.Vector), float32SliceToBytes(c.Vector), now)
		if err != nil {
			return nil, fmt.Errorf("%w: inserting chunk %d: %w", domain.ErrStoreWrite, i, err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("%w: reading sequence of chunk %d: %w", domain.ErrStoreWrite, i, err)
		}
		added[i] = domain.IndexEntry{
			ID:       id,
			Seq:      seq,
			Vector:   append([]float32(nil), c.Vector...),
			Text:     c.Text,
			Metadata: c.Metadata,
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", domain.ErrStoreWrite, err)
	}
	return added, nil
}

// Query ranks every stored entry against vector and returns the best topK.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Dimension and rows must come from one snapshot.
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %w", domain.ErrStoreQuery, err)
	}
	defer tx.Rollback() //nolint:errcheck // read-only

	dim, err := readDimension(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreQuery, err)
	}
	if dim == 0 {
		return []domain.ScoredEntry{}, nil
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: dimension mismatch: query has %d, store holds %d",
			domain.ErrStoreQuery, len(vector), dim)
	}

	entries, err := scanEntries(ctx, tx, dim)
	if err != nil {
		return nil, err
	}

	ranked, err := similarity.Rank(entries, vector, topK)
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

// scanEntries loads every entry in insertion order, checking each against dim.
func scanEntries(ctx context.Context, q queryer, dim int) ([]domain.IndexEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT seq, id, source, chunk_index, text, dimension, vector
		FROM entries ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying entries: %w", domain.ErrStoreQuery, err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.IndexEntry
		var rowDim int
		var blob []byte
		if err := rows.Scan(&e.Seq, &e.ID, &e.Metadata.Source, &e.Metadata.Index,
			&e.Text, &rowDim, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning entry: %w", domain.ErrStoreQuery, err)
		}
		if rowDim != dim || len(blob) != dim*4 {
			return nil, fmt.Errorf("%w: entry %s is corrupt: dimension %d, %d bytes, store holds %d",
				domain.ErrStoreQuery, e.ID, rowDim, len(blob), dim)
		}
		e.Vector = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating entries: %w", domain.ErrStoreQuery, err)
	}
	return entries, nil
}

// HasSource reports whether any entry was written for source.
func (s *Store) HasSource(ctx context.Context, source string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM entries WHERE source = ?)", source).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking source: %w", err)
	}
	return exists, nil
}

// Stats summarises the store contents.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.StoreStats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT source) FROM entries").Scan(&stats.Entries, &stats.Sources)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("counting entries: %w", err)
	}

	stats.Dimension, err = readDimension(ctx, s.db)
	if err != nil {
		return domain.StoreStats{}, err
	}
	return stats, nil
}

// Clear removes every entry and forgets the dimension.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrStoreWrite, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("%w: deleting entries: %w", domain.ErrStoreWrite, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM store_meta WHERE key = ?", metaDimension); err != nil {
		return fmt.Errorf("%w: resetting dimension: %w", domain.ErrStoreWrite, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrStoreWrite, err)
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// readDimension returns the store dimension, or 0 if none is set.
func readDimension(ctx context.Context, q queryer) (int, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", metaDimension).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading dimension: %w", err)
	}
	dim, err := strconv.Atoi(value)
	if err != nil || dim <= 0 {
		return 0, fmt.Errorf("reading dimension: invalid value %q", value)
	}
	return dim, nil
}

// batchDimension validates every chunk and returns the shared dimension.
func batchDimension(chunks []domain.EmbeddedChunk) (int, error) {
	dim := len(chunks[0].Vector)
	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("%w: chunk %d: %w", domain.ErrStoreWrite, i, err)
		}
		if len(c.Vector) != dim {
			return 0, fmt.Errorf("%w: chunk %d has dimension %d, batch has %d",
				domain.ErrStoreWrite, i, len(c.Vector), dim)
		}
	}
	return dim, nil
}
