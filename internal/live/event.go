// Package live pushes assignment changes to connected today-view clients
// over WebSocket, so a completed duty disappears from everyone's list
// without a refresh.
package live

import "github.com/enkhbat/rota/internal/model"

// Event is one assignment change broadcast to all clients.
type Event struct {
	Type         string `json:"type"`
	AssignmentID int64  `json:"assignment_id"`
	DutyKey      string `json:"duty_key"`
	Date         string `json:"date"`
	MemberID     int64  `json:"member_id"`
	Status       string `json:"status"`
}

// AssignmentCreated builds the event for a freshly materialized assignment.
func AssignmentCreated(a model.Assignment) Event {
	return Event{
		Type:         "assignment_created",
		AssignmentID: a.ID,
		DutyKey:      a.DutyKey,
		Date:         a.Date,
		MemberID:     a.AssignedMemberID,
		Status:       a.Status,
	}
}

// AssignmentDone builds the event for a completed assignment.
func AssignmentDone(a model.Assignment) Event {
	return Event{
		Type:         "assignment_done",
		AssignmentID: a.ID,
		DutyKey:      a.DutyKey,
		Date:         a.Date,
		MemberID:     a.AssignedMemberID,
		Status:       a.Status,
	}
}
