package model

import "time"

// Assignment status values.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Notification claim states. Unclaimed and failed rows are both candidates
// for the next dispatch run; claimed rows carry the timestamp of the run
// that took them.
const (
	NotifyUnclaimed = "unclaimed"
	NotifyFailed    = "failed"
	NotifyClaimed   = "claimed"
)

// Assignment records who was on duty for one (duty, date) pair. The assignee
// is resolved once at creation and never recomputed, so past rows stay
// accurate even after the rotation changes.
type Assignment struct {
	ID               int64      `json:"id"`
	DutyKey          string     `json:"duty_key"`
	Date             string     `json:"date"`
	AssignedMemberID int64      `json:"assigned_member_id"`
	Status           string     `json:"status"`
	DoneAt           *time.Time `json:"done_at,omitempty"`
	NotifyState      string     `json:"notify_state"`
	NotifiedAt       *time.Time `json:"notified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Done reports whether the assignment has been completed.
func (a Assignment) Done() bool {
	return a.Status == StatusDone
}
