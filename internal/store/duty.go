package store

import (
	"database/sql"
	"fmt"

	"github.com/enkhbat/rota/internal/model"
)

type DutyStore struct {
	db *sql.DB
}

func NewDutyStore(db *sql.DB) *DutyStore {
	return &DutyStore{db: db}
}

const dutyCols = `id, key, label, active, created_at, updated_at`

func scanDuty(scanner interface{ Scan(...any) error }) (*model.Duty, error) {
	var d model.Duty
	err := scanner.Scan(&d.ID, &d.Key, &d.Label, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListActive returns the active duty catalog sorted by key.
func (s *DutyStore) ListActive() ([]model.Duty, error) {
	rows, err := s.db.Query(`SELECT ` + dutyCols + ` FROM duties WHERE active = 1 ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active duties: %w", err)
	}
	defer rows.Close()

	var duties []model.Duty
	for rows.Next() {
		d, err := scanDuty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan duty: %w", err)
		}
		duties = append(duties, *d)
	}
	return duties, rows.Err()
}

func (s *DutyStore) GetByKey(key string) (*model.Duty, error) {
	row := s.db.QueryRow(`SELECT `+dutyCols+` FROM duties WHERE key = ?`, key)
	d, err := scanDuty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get duty: %w", err)
	}
	return d, nil
}

func (s *DutyStore) Create(key, label string) (*model.Duty, error) {
	result, err := s.db.Exec(`INSERT INTO duties (key, label) VALUES (?, ?)`, key, label)
	if err != nil {
		return nil, fmt.Errorf("insert duty: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+dutyCols+` FROM duties WHERE id = ?`, id)
	return scanDuty(row)
}

// SetActive toggles a duty in or out of the daily materialization set.
func (s *DutyStore) SetActive(key string, active bool) error {
	_, err := s.db.Exec(
		`UPDATE duties SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE key = ?`,
		active, key,
	)
	if err != nil {
		return fmt.Errorf("set duty active: %w", err)
	}
	return nil
}
