package model

import "time"

// TaskTemplate is a one-off or recurring activity definition created by a
// parent. Templates are never mutated by expansion; instances within a range
// are recomputed from the template on every load.
type TaskTemplate struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"householdId"`
	ChildID     string    `json:"childId,omitempty"` // assignee; empty = unassigned
	Title       string    `json:"title"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Repeat      string    `json:"repeat"`              // "none", "daily", "weekly"
	Reminders   []int     `json:"reminders,omitempty"` // minutes before start
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskInstance is a concrete occurrence of a template on one calendar date.
// Locally synthesized instances carry a composite id "templateID@YYYY-MM-DD";
// upstream-sourced instances keep their server-issued id.
type TaskInstance struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"taskId"`
	ChildID    string     `json:"childId,omitempty"` // resolved assignee; empty = unassigned
	Title      string     `json:"title"`
	Color      string     `json:"color"`
	Icon       string     `json:"icon,omitempty"`
	Date       string     `json:"date"` // YYYY-MM-DD, local time
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Done       bool       `json:"done"`
	DoneAt     *time.Time `json:"doneAt,omitempty"`
}

// DayBuckets maps a YYYY-MM-DD key to that day's instances, ordered
// ascending by start time. Buckets are derived state, rebuilt on every load.
type DayBuckets map[string][]TaskInstance

// InstanceState is the persisted completion state of one instance.
type InstanceState struct {
	InstanceID string     `json:"instanceId"`
	ChildID    string     `json:"childId,omitempty"`
	Done       bool       `json:"done"`
	DoneAt     *time.Time `json:"doneAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
