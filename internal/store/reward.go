package store

import (
	"database/sql"
	"fmt"

	"calkids/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

const rewardCols = `child_id, household_id, child_name, total_points, daily_points, tasks_completed, updated_at`

func scanRewardPoints(scanner interface{ Scan(...any) error }) (*model.RewardPoints, error) {
	var p model.RewardPoints
	err := scanner.Scan(&p.ChildID, &p.HouseholdID, &p.ChildName,
		&p.TotalPoints, &p.DailyPoints, &p.TasksCompleted, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RewardStore) Get(childID string) (*model.RewardPoints, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM reward_points WHERE child_id = ?`, childID)
	p, err := scanRewardPoints(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward points: %w", err)
	}
	return p, nil
}

func (s *RewardStore) Upsert(p model.RewardPoints) error {
	_, err := s.db.Exec(
		`INSERT INTO reward_points (child_id, household_id, child_name, total_points, daily_points, tasks_completed, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(child_id) DO UPDATE SET child_name = excluded.child_name,
		 total_points = excluded.total_points, daily_points = excluded.daily_points,
		 tasks_completed = excluded.tasks_completed, updated_at = excluded.updated_at`,
		p.ChildID, p.HouseholdID, p.ChildName, p.TotalPoints, p.DailyPoints, p.TasksCompleted, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert reward points: %w", err)
	}
	return nil
}

// ListByHousehold returns point totals for a household ordered by total
// points descending, for the leaderboard.
func (s *RewardStore) ListByHousehold(householdID string) ([]model.RewardPoints, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM reward_points WHERE household_id = ? ORDER BY total_points DESC, child_name`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reward points: %w", err)
	}
	defer rows.Close()

	var points []model.RewardPoints
	for rows.Next() {
		p, err := scanRewardPoints(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward points: %w", err)
		}
		points = append(points, *p)
	}
	return points, rows.Err()
}

// ResetDaily zeroes the per-day counters for every child in a household.
// Total points are untouched.
func (s *RewardStore) ResetDaily(householdID string) error {
	_, err := s.db.Exec(
		`UPDATE reward_points SET daily_points = 0, tasks_completed = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE household_id = ?`,
		householdID,
	)
	if err != nil {
		return fmt.Errorf("reset daily points: %w", err)
	}
	return nil
}

func (s *RewardStore) Delete(childID string) error {
	_, err := s.db.Exec(`DELETE FROM reward_points WHERE child_id = ?`, childID)
	if err != nil {
		return fmt.Errorf("delete reward points: %w", err)
	}
	return nil
}
