package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"calkids/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, household_id, child_id, title, color, icon, start_at, end_at, repeat, reminders, created_at, updated_at`

// Start and end times are stored as RFC3339 text so the wall-clock time and
// UTC offset the template was created with survive round-trips. Day keys
// derive from local fields, so normalizing to UTC would shift tasks across
// midnight.
func scanTask(scanner interface{ Scan(...any) error }) (*model.TaskTemplate, error) {
	var t model.TaskTemplate
	var startAt, endAt, reminders string

	err := scanner.Scan(&t.ID, &t.HouseholdID, &t.ChildID, &t.Title, &t.Color, &t.Icon,
		&startAt, &endAt, &t.Repeat, &reminders, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if t.Start, err = time.Parse(time.RFC3339, startAt); err != nil {
		return nil, fmt.Errorf("parse start_at %q: %w", startAt, err)
	}
	if t.End, err = time.Parse(time.RFC3339, endAt); err != nil {
		return nil, fmt.Errorf("parse end_at %q: %w", endAt, err)
	}
	if t.Reminders, err = parseReminders(reminders); err != nil {
		return nil, err
	}
	return &t, nil
}

func parseReminders(csv string) ([]int, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse reminders %q: %w", csv, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func formatReminders(mins []int) string {
	if len(mins) == 0 {
		return ""
	}
	parts := make([]string, len(mins))
	for i, n := range mins {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (s *TaskStore) Create(t model.TaskTemplate) (*model.TaskTemplate, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := s.db.Exec(
		`INSERT INTO task_templates (id, household_id, child_id, title, color, icon, start_at, end_at, repeat, reminders)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.HouseholdID, t.ChildID, t.Title, t.Color, t.Icon,
		t.Start.Format(time.RFC3339), t.End.Format(time.RFC3339), t.Repeat, formatReminders(t.Reminders),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task template: %w", err)
	}
	return s.GetByID(t.ID)
}

func (s *TaskStore) GetByID(id string) (*model.TaskTemplate, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM task_templates WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task template: %w", err)
	}
	return t, nil
}

// ListByHousehold returns all of a household's templates ordered by start
// time.
func (s *TaskStore) ListByHousehold(householdID string) ([]model.TaskTemplate, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM task_templates WHERE household_id = ? ORDER BY start_at, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task templates: %w", err)
	}
	defer rows.Close()

	var tasks []model.TaskTemplate
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task template: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(t model.TaskTemplate) (*model.TaskTemplate, error) {
	_, err := s.db.Exec(
		`UPDATE task_templates
		 SET child_id = ?, title = ?, color = ?, icon = ?, start_at = ?, end_at = ?, repeat = ?, reminders = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		t.ChildID, t.Title, t.Color, t.Icon,
		t.Start.Format(time.RFC3339), t.End.Format(time.RFC3339), t.Repeat, formatReminders(t.Reminders),
		t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task template: %w", err)
	}
	return s.GetByID(t.ID)
}

func (s *TaskStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM task_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task template: %w", err)
	}
	return nil
}
