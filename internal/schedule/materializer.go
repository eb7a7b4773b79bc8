// Package schedule holds the scheduling core: materializing the day's duty
// assignments from rotation configuration and tracking their completion.
package schedule

import (
	"log/slog"

	"github.com/enkhbat/rota/internal/live"
	"github.com/enkhbat/rota/internal/model"
	"github.com/enkhbat/rota/internal/rota"
	"github.com/enkhbat/rota/internal/store"
)

// Materializer lazily creates the assignment rows for a date, one per active
// duty. It is safe to invoke concurrently from multiple processes sharing
// the database; row creation rides on the store's atomic create-if-missing.
type Materializer struct {
	duties      *store.DutyStore
	members     *store.MemberStore
	rotations   *store.RotationStore
	assignments *store.AssignmentStore
	hub         *live.Hub
	logger      *slog.Logger
}

func NewMaterializer(
	duties *store.DutyStore,
	members *store.MemberStore,
	rotations *store.RotationStore,
	assignments *store.AssignmentStore,
	hub *live.Hub,
	logger *slog.Logger,
) *Materializer {
	return &Materializer{
		duties:      duties,
		members:     members,
		rotations:   rotations,
		assignments: assignments,
		hub:         hub,
		logger:      logger,
	}
}

// EnsureAssignments returns the assignment for every active duty on date,
// creating missing rows. Existing rows come back untouched: the assignee
// frozen at creation time wins over whatever the current rotation says.
//
// A duty whose resolved participant list is empty (no rotation and no
// members) is skipped silently; an empty household is a startup state, not
// an error.
func (m *Materializer) EnsureAssignments(date rota.Date) ([]model.Assignment, error) {
	duties, err := m.duties.ListActive()
	if err != nil {
		return nil, err
	}

	var members []model.Member
	var memberOrder []int64

	assignments := make([]model.Assignment, 0, len(duties))
	for _, duty := range duties {
		rot, err := m.rotations.Get(duty.Key)
		if err != nil {
			return nil, err
		}

		// Anchor defaults to the query date itself when no rotation exists,
		// which pins an unconfigured duty to index 0 (the first-joined
		// member) every single day. Configure a rotation to make it advance.
		anchor := date
		var order []int64
		if rot != nil {
			start, err := rota.ParseDate(rot.StartDate)
			if err != nil {
				// Start dates are validated on write; a bad one here means
				// the row was edited out of band. Skip rather than guess.
				m.logger.Error("invalid rotation start date",
					"duty", duty.Key, "start_date", rot.StartDate, "error", err)
				continue
			}
			anchor = start
			order = rot.UserOrder
		}
		if len(order) == 0 {
			// Fall back to full membership in join order.
			if members == nil {
				members, err = m.members.List()
				if err != nil {
					return nil, err
				}
				memberOrder = make([]int64, len(members))
				for i, mem := range members {
					memberOrder[i] = mem.ID
				}
			}
			order = memberOrder
		}
		if len(order) == 0 {
			m.logger.Debug("no participants for duty", "duty", duty.Key, "date", date.String())
			continue
		}

		idx := rota.Index(date, anchor, len(order))
		assignee := order[idx]

		a, created, err := m.assignments.CreateIfAbsent(duty.Key, date.String(), assignee)
		if err != nil {
			return nil, err
		}
		if created {
			m.logger.Info("assignment materialized",
				"duty", duty.Key, "date", date.String(), "member_id", assignee)
			m.hub.Broadcast(live.AssignmentCreated(*a))
		}
		assignments = append(assignments, *a)
	}

	return assignments, nil
}
