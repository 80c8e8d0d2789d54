package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"calkids/internal/model"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(scanner interface{ Scan(...any) error }) (*model.ChildProfile, error) {
	var p model.ChildProfile
	var hasPIN, active int

	err := scanner.Scan(&p.ID, &p.HouseholdID, &p.Name, &p.AvatarID, &p.Color,
		&hasPIN, &active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.HasPIN = hasPIN != 0
	p.Active = active != 0
	return &p, nil
}

const profileCols = `id, household_id, name, avatar_id, color, pin_hash != '', active, created_at, updated_at`

func (s *ProfileStore) Create(householdID, name, avatarID, color string) (*model.ChildProfile, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO child_profiles (id, household_id, name, avatar_id, color) VALUES (?, ?, ?, ?, ?)`,
		id, householdID, name, avatarID, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProfileStore) GetByID(id string) (*model.ChildProfile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM child_profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ListByHousehold returns a household's profiles in creation order.
func (s *ProfileStore) ListByHousehold(householdID string) ([]model.ChildProfile, error) {
	rows, err := s.db.Query(
		`SELECT `+profileCols+` FROM child_profiles WHERE household_id = ? ORDER BY created_at, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.ChildProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *ProfileStore) Update(id, name, avatarID, color string) (*model.ChildProfile, error) {
	_, err := s.db.Exec(
		`UPDATE child_profiles SET name = ?, avatar_id = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, avatarID, color, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProfileStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM child_profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// Activate marks one profile active and deactivates every other profile in
// the same household. An empty id deactivates all of them (parent mode).
func (s *ProfileStore) Activate(householdID, id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE child_profiles SET active = 0 WHERE household_id = ?`, householdID); err != nil {
		return fmt.Errorf("deactivate profiles: %w", err)
	}
	if id != "" {
		result, err := tx.Exec(
			`UPDATE child_profiles SET active = 1 WHERE id = ? AND household_id = ?`,
			id, householdID,
		)
		if err != nil {
			return fmt.Errorf("activate profile: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("profile not found")
		}
	}

	return tx.Commit()
}

// GetActive returns the household's active profile, or nil in parent mode.
func (s *ProfileStore) GetActive(householdID string) (*model.ChildProfile, error) {
	row := s.db.QueryRow(
		`SELECT `+profileCols+` FROM child_profiles WHERE household_id = ? AND active = 1`,
		householdID,
	)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active profile: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) SetPIN(id, hashedPIN string) error {
	_, err := s.db.Exec(`UPDATE child_profiles SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hashedPIN, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *ProfileStore) ClearPIN(id string) error {
	_, err := s.db.Exec(`UPDATE child_profiles SET pin_hash = '', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

func (s *ProfileStore) GetPINHash(id string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT pin_hash FROM child_profiles WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("profile not found")
	}
	if err != nil {
		return "", fmt.Errorf("query pin: %w", err)
	}
	return hash, nil
}
