package fssnapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store persists the snapshot catalogue across process invocations, the
// way the original toolbox's fs_admin keeps its snapshot catalogue on
// disk rather than purely in memory.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite-backed snapshot store at
// path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("fssnapshot: open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			reason TEXT,
			created_at TEXT NOT NULL,
			files TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("fssnapshot: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save persists a snapshot.
func (s *Store) Save(snap Snapshot) error {
	filesJSON, err := json.Marshal(snap.Files)
	if err != nil {
		return fmt.Errorf("fssnapshot: marshal files: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (id, reason, created_at, files) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Reason, snap.CreatedAt, string(filesJSON),
	)
	if err != nil {
		return fmt.Errorf("fssnapshot: save: %w", err)
	}
	return nil
}

// Get loads a previously saved snapshot by id.
func (s *Store) Get(id string) (Snapshot, error) {
	var snap Snapshot
	var filesJSON string
	row := s.db.QueryRow(`SELECT id, reason, created_at, files FROM snapshots WHERE id = ?`, id)
	if err := row.Scan(&snap.ID, &snap.Reason, &snap.CreatedAt, &filesJSON); err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, fmt.Errorf("fssnapshot: %q not found", id)
		}
		return Snapshot{}, fmt.Errorf("fssnapshot: get: %w", err)
	}
	if err := json.Unmarshal([]byte(filesJSON), &snap.Files); err != nil {
		return Snapshot{}, fmt.Errorf("fssnapshot: unmarshal files: %w", err)
	}
	return snap, nil
}

// List returns every saved snapshot, including its files, most recent
// first.
func (s *Store) List() ([]Snapshot, error) {
	rows, err := s.db.Query(`SELECT id, reason, created_at, files FROM snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("fssnapshot: list: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var filesJSON string
		if err := rows.Scan(&snap.ID, &snap.Reason, &snap.CreatedAt, &filesJSON); err != nil {
			return nil, fmt.Errorf("fssnapshot: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(filesJSON), &snap.Files); err != nil {
			return nil, fmt.Errorf("fssnapshot: unmarshal files: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
