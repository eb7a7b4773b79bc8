package schedule

import (
	"log/slog"
	"time"

	"github.com/enkhbat/rota/internal/live"
	"github.com/enkhbat/rota/internal/model"
	"github.com/enkhbat/rota/internal/store"
)

// Completer transitions assignments from pending to done. The only allowed
// transition is pending → done; there is no undo.
type Completer struct {
	assignments *store.AssignmentStore
	hub         *live.Hub
	logger      *slog.Logger
	now         func() time.Time
}

func NewCompleter(assignments *store.AssignmentStore, hub *live.Hub, logger *slog.Logger) *Completer {
	return &Completer{
		assignments: assignments,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
}

// MarkDone completes an assignment on behalf of an actor. Only the assignee
// or an admin may complete it. Completing an already-done assignment is a
// no-op success that preserves the original done_at.
func (c *Completer) MarkDone(id, actorID int64, actorIsAdmin bool) (*model.Assignment, error) {
	a, err := c.assignments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}

	if a.AssignedMemberID != actorID && !actorIsAdmin {
		return nil, ErrForbidden
	}

	if a.Done() {
		return a, nil
	}

	changed, err := c.assignments.MarkDone(id, c.now())
	if err != nil {
		return nil, err
	}

	a, err = c.assignments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}

	if changed {
		c.logger.Info("assignment completed",
			"assignment_id", id, "duty", a.DutyKey, "date", a.Date, "actor_id", actorID)
		c.hub.Broadcast(live.AssignmentDone(*a))
	}
	return a, nil
}
