// Package store persists an analyzed graph to SQLite so other tooling can
// query it without re-running the analyzer.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

// Querier abstracts *sql.DB and *sql.Tx so store methods work in both contexts.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps a SQLite connection for graph storage.
type Store struct {
	db     *sql.DB
	q      Querier // active querier: db or tx
	dbPath string
}

// Open opens or creates a SQLite database at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db, dbPath: dbPath}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory SQLite database (for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	s := &Store{db: db, dbPath: ":memory:"}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// WithTransaction executes fn within a single SQLite transaction. The
// callback receives a transaction-scoped Store; the receiver's q field is
// never mutated, so concurrent readers on s are unaffected.
func (s *Store) WithTransaction(fn func(txStore *Store) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{db: s.db, q: tx, dbPath: s.dbPath}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		line INTEGER NOT NULL,
		language TEXT DEFAULT '',
		signature TEXT DEFAULT '',
		docstring TEXT DEFAULT '',
		visibility TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);
	CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name);
	CREATE INDEX IF NOT EXISTS idx_nodes_file ON nodes(file_path);

	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		target_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		context TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
	CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(type);
	`
	if _, err := s.q.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveGraph replaces the stored graph with g inside a single transaction.
func (s *Store) SaveGraph(g *graph.Graph) error {
	return s.WithTransaction(func(tx *Store) error {
		if _, err := tx.q.Exec("DELETE FROM edges"); err != nil {
			return fmt.Errorf("clear edges: %w", err)
		}
		if _, err := tx.q.Exec("DELETE FROM nodes"); err != nil {
			return fmt.Errorf("clear nodes: %w", err)
		}
		for _, n := range g.Nodes() {
			if err := tx.insertNode(n); err != nil {
				return err
			}
		}
		for _, e := range g.Edges() {
			if err := tx.insertEdge(e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) insertNode(n *graph.Node) error {
	_, err := s.q.Exec(`
		INSERT INTO nodes (id, type, name, file_path, line, language, signature, docstring, visibility)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type=excluded.type, name=excluded.name, file_path=excluded.file_path,
			line=excluded.line, language=excluded.language, signature=excluded.signature,
			docstring=excluded.docstring, visibility=excluded.visibility`,
		n.ID, string(n.Type), n.Name, n.FilePath, n.Line, n.Language, n.Signature, n.Docstring, n.Visibility)
	if err != nil {
		return fmt.Errorf("insert node %s: %w", n.ID, err)
	}
	return nil
}

func (s *Store) insertEdge(e graph.Edge) error {
	_, err := s.q.Exec(`
		INSERT INTO edges (source_id, target_id, type, context)
		VALUES (?, ?, ?, ?)`,
		e.SourceID, e.TargetID, string(e.Type), e.Context)
	if err != nil {
		return fmt.Errorf("insert edge %s->%s: %w", e.SourceID, e.TargetID, err)
	}
	return nil
}
