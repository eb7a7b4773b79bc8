package handler

import (
	"log/slog"
	"net/http"

	"github.com/enkhbat/rota/internal/model"
	"github.com/enkhbat/rota/internal/store"
)

type DutyHandler struct {
	duties *store.DutyStore
	logger *slog.Logger
}

func NewDutyHandler(duties *store.DutyStore, logger *slog.Logger) *DutyHandler {
	return &DutyHandler{duties: duties, logger: logger}
}

// List returns the active duty catalog sorted by key.
func (h *DutyHandler) List(w http.ResponseWriter, r *http.Request) {
	duties, err := h.duties.ListActive()
	if err != nil {
		h.logger.Error("list duties", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list duties")
		return
	}
	if duties == nil {
		duties = []model.Duty{}
	}
	writeJSON(w, http.StatusOK, duties)
}
