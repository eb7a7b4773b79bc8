package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/enkhbat/rota/internal/model"
	"github.com/enkhbat/rota/internal/rota"
	"github.com/enkhbat/rota/internal/store"
)

type RotationHandler struct {
	rotations *store.RotationStore
	duties    *store.DutyStore
	members   *store.MemberStore
	logger    *slog.Logger
}

func NewRotationHandler(rotations *store.RotationStore, duties *store.DutyStore, members *store.MemberStore, logger *slog.Logger) *RotationHandler {
	return &RotationHandler{rotations: rotations, duties: duties, members: members, logger: logger}
}

// List returns every configured rotation.
func (h *RotationHandler) List(w http.ResponseWriter, r *http.Request) {
	rotations, err := h.rotations.List()
	if err != nil {
		h.logger.Error("list rotations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rotations")
		return
	}
	if rotations == nil {
		rotations = []model.Rotation{}
	}
	writeJSON(w, http.StatusOK, rotations)
}

type rotationRequest struct {
	StartDate string  `json:"start_date"`
	UserOrder []int64 `json:"user_order"`
}

// Upsert creates or replaces the rotation for one duty. Past assignments
// keep their assignee; only days materialized after this call see the new
// order.
func (h *RotationHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	dutyKey := r.PathValue("dutyKey")

	duty, err := h.duties.GetByKey(dutyKey)
	if err != nil {
		h.logger.Error("get duty", "duty_key", dutyKey, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save rotation")
		return
	}
	if duty == nil {
		writeError(w, http.StatusNotFound, "duty not found")
		return
	}

	var req rotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, err := rota.ParseDate(req.StartDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date, want YYYY-MM-DD")
		return
	}
	if len(req.UserOrder) == 0 {
		writeError(w, http.StatusBadRequest, "user_order must not be empty")
		return
	}
	for _, id := range req.UserOrder {
		m, err := h.members.GetByID(id)
		if err != nil {
			h.logger.Error("check member", "member_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save rotation")
			return
		}
		if m == nil {
			writeError(w, http.StatusBadRequest, "unknown member in user_order")
			return
		}
	}

	if err := h.rotations.Upsert(dutyKey, req.StartDate, req.UserOrder); err != nil {
		h.logger.Error("upsert rotation", "duty_key", dutyKey, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save rotation")
		return
	}

	rot, err := h.rotations.Get(dutyKey)
	if err != nil || rot == nil {
		h.logger.Error("reload rotation", "duty_key", dutyKey, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save rotation")
		return
	}

	writeJSON(w, http.StatusOK, rot)
}
