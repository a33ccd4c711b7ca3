package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS models (
			path TEXT PRIMARY KEY,
			title TEXT,
			node_label_length INTEGER,
			valid INTEGER,
			messages TEXT,
			saved_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS units (
			model_path TEXT REFERENCES models(path) ON DELETE CASCADE,
			seq INTEGER,
			kind TEXT,
			name TEXT,
			labels JSON,
			line INTEGER,
			comment TEXT,
			PRIMARY KEY (model_path, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			model_path TEXT REFERENCES models(path) ON DELETE CASCADE,
			id TEXT,
			seq INTEGER,
			name TEXT,
			labels JSON,
			junction TEXT,
			boundaries JSON,
			PRIMARY KEY (model_path, id)
		);`,
		`CREATE TABLE IF NOT EXISTS branches (
			model_path TEXT REFERENCES models(path) ON DELETE CASCADE,
			id TEXT,
			seq INTEGER,
			name TEXT,
			us_node TEXT,
			ds_node TEXT,
			layers JSON,
			PRIMARY KEY (model_path, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_units_name ON units(name);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveModel replaces any earlier snapshot of the same path in one
// transaction.
func (s *SQLiteStore) SaveModel(ctx context.Context, m *Model) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM models WHERE path = ?", m.Path); err != nil {
		return fmt.Errorf("failed to clear model: %w", err)
	}
	if m.SavedAt.IsZero() {
		m.SavedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO models (path, title, node_label_length, valid, messages, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.Path, m.Title, m.NodeLabelLength, m.Valid, m.Messages, m.SavedAt); err != nil {
		return fmt.Errorf("failed to insert model: %w", err)
	}

	// 1. Save Units
	unitStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO units (model_path, seq, kind, name, labels, line, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer unitStmt.Close()

	for _, u := range m.Units {
		labels, _ := json.Marshal(u.Labels)
		if _, err := unitStmt.ExecContext(ctx, m.Path, u.Seq, u.Kind, u.Name, string(labels), u.Line, u.Comment); err != nil {
			return err
		}
	}

	// 2. Save Nodes
	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (model_path, id, seq, name, labels, junction, boundaries)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	for i, n := range m.Nodes {
		labels, _ := json.Marshal(n.Labels)
		boundaries, _ := json.Marshal(n.Boundaries)
		if _, err := nodeStmt.ExecContext(ctx, m.Path, n.ID, i, n.Name, string(labels), n.Junction, string(boundaries)); err != nil {
			return err
		}
	}

	// 3. Save Branches
	branchStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO branches (model_path, id, seq, name, us_node, ds_node, layers)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer branchStmt.Close()

	for i, b := range m.Branches {
		layers, _ := json.Marshal(b.Layers)
		if _, err := branchStmt.ExecContext(ctx, m.Path, b.ID, i, b.Name, b.Upstream, b.Downstream, string(layers)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadModel(ctx context.Context, path string) (*Model, error) {
	row := s.db.QueryRowContext(ctx, "SELECT path, title, node_label_length, valid, messages, saved_at FROM models WHERE path = ?", path)
	m, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	// 1. Load Units
	if m.Units, err = s.units(ctx, "SELECT model_path, seq, kind, name, labels, line, comment FROM units WHERE model_path = ? ORDER BY seq", path); err != nil {
		return nil, err
	}

	// 2. Load Nodes
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, labels, junction, boundaries FROM nodes WHERE model_path = ? ORDER BY seq", path)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n Node
		var labels, boundaries []byte
		if err := rows.Scan(&n.ID, &n.Name, &labels, &n.Junction, &boundaries); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		_ = json.Unmarshal(labels, &n.Labels)
		_ = json.Unmarshal(boundaries, &n.Boundaries)
		m.Nodes = append(m.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 3. Load Branches
	branchRows, err := s.db.QueryContext(ctx, "SELECT id, name, us_node, ds_node, layers FROM branches WHERE model_path = ? ORDER BY seq", path)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer branchRows.Close()
	for branchRows.Next() {
		var b Branch
		var layers []byte
		if err := branchRows.Scan(&b.ID, &b.Name, &b.Upstream, &b.Downstream, &layers); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		_ = json.Unmarshal(layers, &b.Layers)
		m.Branches = append(m.Branches, b)
	}
	return m, branchRows.Err()
}

func (s *SQLiteStore) ListModels(ctx context.Context) ([]*Model, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path, title, node_label_length, valid, messages, saved_at FROM models ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteModel(ctx context.Context, path string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM models WHERE path = ?", path)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrModelNotFound, path)
	}
	return nil
}

func (s *SQLiteStore) FindUnitsByLabel(ctx context.Context, label string) ([]UnitRef, error) {
	units, err := s.unitRefs(ctx, `
		SELECT u.model_path, u.seq, u.kind, u.name, u.labels, u.line, u.comment
		FROM units u, json_each(u.labels) l
		WHERE l.value = ?
		ORDER BY u.model_path, u.seq
	`, label)
	if err != nil {
		return nil, err
	}
	return units, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModel(row scanner) (*Model, error) {
	var m Model
	if err := row.Scan(&m.Path, &m.Title, &m.NodeLabelLength, &m.Valid, &m.Messages, &m.SavedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) units(ctx context.Context, query string, args ...any) ([]Unit, error) {
	refs, err := s.unitRefs(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]Unit, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Unit)
	}
	return out, nil
}

func (s *SQLiteStore) unitRefs(ctx context.Context, query string, args ...any) ([]UnitRef, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var out []UnitRef
	for rows.Next() {
		var r UnitRef
		var labels []byte
		if err := rows.Scan(&r.Path, &r.Unit.Seq, &r.Unit.Kind, &r.Unit.Name, &labels, &r.Unit.Line, &r.Unit.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		_ = json.Unmarshal(labels, &r.Unit.Labels)
		out = append(out, r)
	}
	return out, rows.Err()
}
