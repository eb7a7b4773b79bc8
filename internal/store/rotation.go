package store

import (
	"database/sql"
	"fmt"

	"github.com/enkhbat/rota/internal/model"
)

type RotationStore struct {
	db *sql.DB
}

func NewRotationStore(db *sql.DB) *RotationStore {
	return &RotationStore{db: db}
}

// Get returns the rotation for a duty, or nil when none is configured.
func (s *RotationStore) Get(dutyKey string) (*model.Rotation, error) {
	row := s.db.QueryRow(
		`SELECT id, duty_key, start_date, created_at, updated_at FROM rotations WHERE duty_key = ?`,
		dutyKey,
	)

	var r model.Rotation
	err := row.Scan(&r.ID, &r.DutyKey, &r.StartDate, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rotation: %w", err)
	}

	order, err := s.memberOrder(r.ID)
	if err != nil {
		return nil, err
	}
	r.UserOrder = order
	return &r, nil
}

// List returns every configured rotation with its participant order.
func (s *RotationStore) List() ([]model.Rotation, error) {
	rows, err := s.db.Query(`SELECT id, duty_key, start_date, created_at, updated_at FROM rotations ORDER BY duty_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rotations: %w", err)
	}
	defer rows.Close()

	var rotations []model.Rotation
	for rows.Next() {
		var r model.Rotation
		if err := rows.Scan(&r.ID, &r.DutyKey, &r.StartDate, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rotation: %w", err)
		}
		rotations = append(rotations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rotations {
		order, err := s.memberOrder(rotations[i].ID)
		if err != nil {
			return nil, err
		}
		rotations[i].UserOrder = order
	}
	return rotations, nil
}

func (s *RotationStore) memberOrder(rotationID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT member_id FROM rotation_members WHERE rotation_id = ? ORDER BY position ASC`,
		rotationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rotation members: %w", err)
	}
	defer rows.Close()

	var order []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rotation member: %w", err)
		}
		order = append(order, id)
	}
	return order, rows.Err()
}

// Upsert creates or replaces the rotation for a duty, including its ordered
// participant list. userOrder must be non-empty; membership validation is
// the caller's job.
func (s *RotationStore) Upsert(dutyKey, startDate string, userOrder []int64) error {
	if len(userOrder) == 0 {
		return fmt.Errorf("upsert rotation: empty user order")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO rotations (duty_key, start_date) VALUES (?, ?)
		 ON CONFLICT(duty_key) DO UPDATE SET start_date = excluded.start_date, updated_at = CURRENT_TIMESTAMP`,
		dutyKey, startDate,
	)
	if err != nil {
		return fmt.Errorf("upsert rotation: %w", err)
	}

	var rotationID int64
	if err := tx.QueryRow(`SELECT id FROM rotations WHERE duty_key = ?`, dutyKey).Scan(&rotationID); err != nil {
		return fmt.Errorf("rotation id: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM rotation_members WHERE rotation_id = ?`, rotationID); err != nil {
		return fmt.Errorf("clear rotation members: %w", err)
	}
	for pos, memberID := range userOrder {
		if _, err := tx.Exec(
			`INSERT INTO rotation_members (rotation_id, position, member_id) VALUES (?, ?, ?)`,
			rotationID, pos, memberID,
		); err != nil {
			return fmt.Errorf("insert rotation member: %w", err)
		}
	}

	return tx.Commit()
}
