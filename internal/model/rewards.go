package model

import "time"

// RewardPoints is the per-child points accumulator. TotalPoints persists
// across days; DailyPoints and TasksCompleted are zeroed by the explicit
// daily reset.
type RewardPoints struct {
	ChildID        string    `json:"childId"`
	HouseholdID    string    `json:"-"`
	ChildName      string    `json:"childName"`
	TotalPoints    int       `json:"totalPoints"`
	DailyPoints    int       `json:"dailyPoints"`
	TasksCompleted int       `json:"tasksCompleted"`
	UpdatedAt      time.Time `json:"-"`
}
