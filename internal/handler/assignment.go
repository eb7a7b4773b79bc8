package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/enkhbat/rota/internal/model"
	"github.com/enkhbat/rota/internal/rota"
	"github.com/enkhbat/rota/internal/schedule"
	"github.com/enkhbat/rota/internal/store"
)

type AssignmentHandler struct {
	materializer *schedule.Materializer
	completer    *schedule.Completer
	duties       *store.DutyStore
	members      *store.MemberStore
	loc          *time.Location
	logger       *slog.Logger
}

func NewAssignmentHandler(
	materializer *schedule.Materializer,
	completer *schedule.Completer,
	duties *store.DutyStore,
	members *store.MemberStore,
	loc *time.Location,
	logger *slog.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		materializer: materializer,
		completer:    completer,
		duties:       duties,
		members:      members,
		loc:          loc,
		logger:       logger,
	}
}

// dayEntry decorates an assignment with presentation fields.
type dayEntry struct {
	model.Assignment
	DutyLabel  string `json:"duty_label"`
	MemberName string `json:"member_name"`
}

type dayResponse struct {
	Date        string     `json:"date"`
	Assignments []dayEntry `json:"assignments"`
}

// Today materializes and returns the current day's assignments.
func (h *AssignmentHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.day(w, rota.Today(h.loc))
}

// Day does the same for an explicit date from the path.
func (h *AssignmentHandler) Day(w http.ResponseWriter, r *http.Request) {
	date, err := rota.ParseDate(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}
	h.day(w, date)
}

func (h *AssignmentHandler) day(w http.ResponseWriter, date rota.Date) {
	assignments, err := h.materializer.EnsureAssignments(date)
	if err != nil {
		h.logger.Error("ensure assignments", "date", date.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load assignments")
		return
	}

	labels, names, err := h.lookups()
	if err != nil {
		h.logger.Error("load lookups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load assignments")
		return
	}

	entries := make([]dayEntry, 0, len(assignments))
	for _, a := range assignments {
		label := a.DutyKey
		if l, ok := labels[a.DutyKey]; ok {
			label = l
		}
		entries = append(entries, dayEntry{
			Assignment: a,
			DutyLabel:  label,
			MemberName: names[a.AssignedMemberID],
		})
	}

	writeJSON(w, http.StatusOK, dayResponse{Date: date.String(), Assignments: entries})
}

type markDoneRequest struct {
	MemberID int64 `json:"member_id"`
}

// MarkDone completes an assignment on behalf of the acting member.
func (h *AssignmentHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req markDoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	actor, err := h.members.GetByID(req.MemberID)
	if err != nil {
		h.logger.Error("load acting member", "member_id", req.MemberID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete assignment")
		return
	}
	if actor == nil {
		writeError(w, http.StatusBadRequest, "unknown member")
		return
	}

	a, err := h.completer.MarkDone(id, actor.ID, actor.IsAdmin())
	switch {
	case errors.Is(err, schedule.ErrNotFound):
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	case errors.Is(err, schedule.ErrForbidden):
		writeError(w, http.StatusForbidden, "not your duty")
		return
	case err != nil:
		h.logger.Error("mark done", "assignment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete assignment")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *AssignmentHandler) lookups() (labels map[string]string, names map[int64]string, err error) {
	duties, err := h.duties.ListActive()
	if err != nil {
		return nil, nil, err
	}
	members, err := h.members.List()
	if err != nil {
		return nil, nil, err
	}
	labels = make(map[string]string, len(duties))
	for _, d := range duties {
		labels[d.Key] = d.Label
	}
	names = make(map[int64]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return labels, names, nil
}
