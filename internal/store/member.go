package store

import (
	"database/sql"
	"fmt"

	"github.com/enkhbat/rota/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, name, role, telegram_chat_id, telegram_username, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	var chatID sql.NullInt64

	err := scanner.Scan(&m.ID, &m.Name, &m.Role, &chatID, &m.TelegramUsername, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if chatID.Valid {
		m.TelegramChatID = &chatID.Int64
	}
	return &m, nil
}

// List returns all members in join order, the default rotation order.
func (s *MemberStore) List() ([]model.Member, error) {
	rows, err := s.db.Query(`SELECT ` + memberCols + ` FROM members ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) GetByID(id int64) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) Create(name, role string) (*model.Member, error) {
	result, err := s.db.Exec(`INSERT INTO members (name, role) VALUES (?, ?)`, name, role)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// SetTelegramChat attaches a Telegram chat to a member. The linking flow
// itself lives outside this service; this is the write it lands on.
func (s *MemberStore) SetTelegramChat(id, chatID int64, username string) error {
	_, err := s.db.Exec(
		`UPDATE members SET telegram_chat_id = ?, telegram_username = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		chatID, username, id,
	)
	if err != nil {
		return fmt.Errorf("set telegram chat: %w", err)
	}
	return nil
}
