package model

import "time"

// ChildProfile is a child belonging to a household. Profiles drive view
// filtering: a board in child mode shows only that child's task instances.
type ChildProfile struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"householdId"`
	Name        string    `json:"name"`
	AvatarID    string    `json:"avatarId"`
	Color       string    `json:"color"`
	HasPIN      bool      `json:"hasPin"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
