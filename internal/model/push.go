package model

import "time"

// PushSubscription is a web-push endpoint registered for a member. Rows are
// created by the subscription flow outside this service; we only read and
// prune them.
type PushSubscription struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
