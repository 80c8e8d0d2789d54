package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"calkids/internal/model"
)

// InstanceStore persists per-occurrence completion state keyed by the
// composite instance id (template id + "@" + day).
type InstanceStore struct {
	db *sql.DB
}

func NewInstanceStore(db *sql.DB) *InstanceStore {
	return &InstanceStore{db: db}
}

const instanceCols = `instance_id, child_id, done, done_at, updated_at`

func scanInstanceState(scanner interface{ Scan(...any) error }) (*model.InstanceState, error) {
	var st model.InstanceState
	var done int
	var doneAt sql.NullString

	err := scanner.Scan(&st.InstanceID, &st.ChildID, &done, &doneAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}

	st.Done = done != 0
	if doneAt.Valid && doneAt.String != "" {
		ts, err := time.Parse(time.RFC3339, doneAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse done_at %q: %w", doneAt.String, err)
		}
		st.DoneAt = &ts
	}
	return &st, nil
}

func (s *InstanceStore) Get(instanceID string) (*model.InstanceState, error) {
	row := s.db.QueryRow(`SELECT `+instanceCols+` FROM instance_state WHERE instance_id = ?`, instanceID)
	st, err := scanInstanceState(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get instance state: %w", err)
	}
	return st, nil
}

func (s *InstanceStore) Set(st model.InstanceState) error {
	var done int
	if st.Done {
		done = 1
	}
	var doneAt any
	if st.DoneAt != nil {
		doneAt = st.DoneAt.Format(time.RFC3339)
	}

	_, err := s.db.Exec(
		`INSERT INTO instance_state (instance_id, child_id, done, done_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(instance_id) DO UPDATE SET child_id = excluded.child_id, done = excluded.done,
		 done_at = excluded.done_at, updated_at = excluded.updated_at`,
		st.InstanceID, st.ChildID, done, doneAt, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert instance state: %w", err)
	}
	return nil
}

// GetMany returns recorded states for the given instance ids. Instances
// with no recorded state are simply absent from the result.
func (s *InstanceStore) GetMany(instanceIDs []string) (map[string]model.InstanceState, error) {
	out := make(map[string]model.InstanceState)
	if len(instanceIDs) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(instanceIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(instanceIDs))
	for i, id := range instanceIDs {
		args[i] = id
	}

	rows, err := s.db.Query(
		`SELECT `+instanceCols+` FROM instance_state WHERE instance_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get instance states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		st, err := scanInstanceState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instance state: %w", err)
		}
		out[st.InstanceID] = *st
	}
	return out, rows.Err()
}

// DeleteByTemplate removes recorded state for every occurrence of a
// template, used when the template itself is deleted.
func (s *InstanceStore) DeleteByTemplate(templateID string) error {
	_, err := s.db.Exec(`DELETE FROM instance_state WHERE instance_id LIKE ?`, templateID+"@%")
	if err != nil {
		return fmt.Errorf("delete instance states: %w", err)
	}
	return nil
}
