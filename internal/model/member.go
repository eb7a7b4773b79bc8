package model

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member is a household member. Join order (created_at, then id) is the
// default rotation order for duties without an explicit rotation.
type Member struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	TelegramChatID   *int64    `json:"telegram_chat_id,omitempty"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsAdmin reports whether the member holds the admin role.
func (m Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Linked reports whether the member has a Telegram chat attached.
func (m Member) Linked() bool {
	return m.TelegramChatID != nil
}
