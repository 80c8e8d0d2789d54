package model

import "time"

type Household struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ParentName string    `json:"parentName"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Session struct {
	ID          int64     `json:"id"`
	Token       string    `json:"token"`
	HouseholdID string    `json:"householdId"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}
