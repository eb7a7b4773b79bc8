package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/enkhbat/rota/internal/model"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

const assignmentCols = `id, duty_key, date, assigned_member_id, status, done_at, notify_state, notified_at, created_at`

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var doneAt, notifiedAt sql.NullTime

	err := scanner.Scan(
		&a.ID, &a.DutyKey, &a.Date, &a.AssignedMemberID, &a.Status,
		&doneAt, &a.NotifyState, &notifiedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if doneAt.Valid {
		a.DoneAt = &doneAt.Time
	}
	if notifiedAt.Valid {
		a.NotifiedAt = &notifiedAt.Time
	}
	return &a, nil
}

// CreateIfAbsent inserts a pending assignment for (dutyKey, date) unless one
// already exists, and returns the surviving row plus whether this call
// inserted it. The unique index makes the insert an atomic create-if-missing,
// so concurrent callers never race two different assignees onto the same
// duty-day; the first writer wins and the stored assignee is never
// overwritten.
func (s *AssignmentStore) CreateIfAbsent(dutyKey, date string, memberID int64) (*model.Assignment, bool, error) {
	result, err := s.db.Exec(
		`INSERT INTO assignments (duty_key, date, assigned_member_id) VALUES (?, ?, ?)
		 ON CONFLICT(duty_key, date) DO NOTHING`,
		dutyKey, date, memberID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	a, err := s.GetByDutyAndDate(dutyKey, date)
	if err != nil {
		return nil, false, err
	}
	return a, n > 0, nil
}

func (s *AssignmentStore) GetByID(id int64) (*model.Assignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *AssignmentStore) GetByDutyAndDate(dutyKey, date string) (*model.Assignment, error) {
	row := s.db.QueryRow(
		`SELECT `+assignmentCols+` FROM assignments WHERE duty_key = ? AND date = ?`,
		dutyKey, date,
	)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment by duty and date: %w", err)
	}
	return a, nil
}

func (s *AssignmentStore) ListByDate(date string) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments WHERE date = ? ORDER BY duty_key ASC`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// MarkDone transitions a pending assignment to done. A row already done is
// left untouched (0 rows affected), which keeps the original done_at.
func (s *AssignmentStore) MarkDone(id int64, at time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE assignments SET status = ?, done_at = ? WHERE id = ? AND status = ?`,
		model.StatusDone, at.UTC(), id, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark done: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Claim stamps every not-yet-notified assignment on a date with the given
// run token in one conditional UPDATE. Rows another run claimed first are
// skipped, so two concurrent dispatches end up owning disjoint sets. Returns
// the number of rows claimed.
func (s *AssignmentStore) Claim(date, token string, at time.Time) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE assignments
		 SET notify_state = ?, notified_at = ?, claim_token = ?
		 WHERE date = ? AND notify_state IN (?, ?)`,
		model.NotifyClaimed, at.UTC(), token,
		date, model.NotifyUnclaimed, model.NotifyFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("claim assignments: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ListClaimed returns the assignments stamped with a run token.
func (s *AssignmentStore) ListClaimed(token string) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments WHERE claim_token = ? ORDER BY duty_key ASC`,
		token,
	)
	if err != nil {
		return nil, fmt.Errorf("list claimed assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claimed assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// ReleaseRun reverts every assignment claimed under a run token, used when a
// dispatch run dies before attempting delivery.
func (s *AssignmentStore) ReleaseRun(token string) error {
	_, err := s.db.Exec(
		`UPDATE assignments
		 SET notify_state = ?, notified_at = NULL, claim_token = NULL
		 WHERE claim_token = ?`,
		model.NotifyFailed, token,
	)
	if err != nil {
		return fmt.Errorf("release run: %w", err)
	}
	return nil
}

// ReleaseClaim reverts a member's claimed assignments from a run back to
// notifiable, so the next dispatch retries them. Returns the number of rows
// released.
func (s *AssignmentStore) ReleaseClaim(token string, memberID int64) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE assignments
		 SET notify_state = ?, notified_at = NULL, claim_token = NULL
		 WHERE claim_token = ? AND assigned_member_id = ?`,
		model.NotifyFailed, token, memberID,
	)
	if err != nil {
		return 0, fmt.Errorf("release claim: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
