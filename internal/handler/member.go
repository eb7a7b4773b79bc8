package handler

import (
	"log/slog"
	"net/http"

	"github.com/enkhbat/rota/internal/model"
	"github.com/enkhbat/rota/internal/store"
)

type MemberHandler struct {
	members *store.MemberStore
	logger  *slog.Logger
}

func NewMemberHandler(members *store.MemberStore, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: members, logger: logger}
}

// List returns household members in join order.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.List()
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}
