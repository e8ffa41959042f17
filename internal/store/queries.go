package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

// Counts holds stored node and edge totals.
type Counts struct {
	Nodes int
	Edges int
}

// GraphCounts returns the stored node and edge totals.
func (s *Store) GraphCounts() (Counts, error) {
	var c Counts
	if err := s.q.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&c.Nodes); err != nil {
		return c, fmt.Errorf("count nodes: %w", err)
	}
	if err := s.q.QueryRow("SELECT COUNT(*) FROM edges").Scan(&c.Edges); err != nil {
		return c, fmt.Errorf("count edges: %w", err)
	}
	return c, nil
}

// FindNode returns the stored node with the given ID, or nil when absent.
func (s *Store) FindNode(id string) (*graph.Node, error) {
	row := s.q.QueryRow(`SELECT id, type, name, file_path, line, language, signature, docstring, visibility
		FROM nodes WHERE id=?`, id)
	n := &graph.Node{}
	var typ string
	err := row.Scan(&n.ID, &typ, &n.Name, &n.FilePath, &n.Line, &n.Language, &n.Signature, &n.Docstring, &n.Visibility)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find node %s: %w", id, err)
	}
	n.Type = graph.NodeType(typ)
	return n, nil
}

// NodesByType returns all stored nodes with the given type, ordered by ID.
func (s *Store) NodesByType(typ graph.NodeType) ([]*graph.Node, error) {
	rows, err := s.q.Query(`SELECT id, type, name, file_path, line, language, signature, docstring, visibility
		FROM nodes WHERE type=? ORDER BY id`, string(typ))
	if err != nil {
		return nil, fmt.Errorf("nodes by type: %w", err)
	}
	defer rows.Close()

	var out []*graph.Node
	for rows.Next() {
		n := &graph.Node{}
		var t string
		if err := rows.Scan(&n.ID, &t, &n.Name, &n.FilePath, &n.Line, &n.Language, &n.Signature, &n.Docstring, &n.Visibility); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.Type = graph.NodeType(t)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Callees returns the targets of every call edge leaving sourceID.
func (s *Store) Callees(sourceID string) ([]graph.Edge, error) {
	return s.edgesWhere("source_id=? AND type=?", sourceID, string(graph.EdgeCall))
}

// Callers returns the call edges arriving at targetID.
func (s *Store) Callers(targetID string) ([]graph.Edge, error) {
	return s.edgesWhere("target_id=? AND type=?", targetID, string(graph.EdgeCall))
}

func (s *Store) edgesWhere(where string, args ...any) ([]graph.Edge, error) {
	rows, err := s.q.Query("SELECT type, source_id, target_id, context FROM edges WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var out []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var typ string
		if err := rows.Scan(&typ, &e.SourceID, &e.TargetID, &e.Context); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Type = graph.EdgeType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}
