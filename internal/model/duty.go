package model

import "time"

// Duty is a recurring household task identified by a stable key ("cook",
// "trash"). Keys are immutable once assignments reference them.
type Duty struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rotation fixes the participant order and anchor date for one duty.
// UserOrder is never empty when a rotation exists.
type Rotation struct {
	ID        int64     `json:"id"`
	DutyKey   string    `json:"duty_key"`
	StartDate string    `json:"start_date"`
	UserOrder []int64   `json:"user_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
