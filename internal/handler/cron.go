package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/enkhbat/rota/internal/notify"
	"github.com/enkhbat/rota/internal/rota"
	"github.com/enkhbat/rota/internal/schedule"
)

type CronHandler struct {
	materializer *schedule.Materializer
	dispatcher   *notify.Dispatcher
	loc          *time.Location
	logger       *slog.Logger
}

func NewCronHandler(materializer *schedule.Materializer, dispatcher *notify.Dispatcher, loc *time.Location, logger *slog.Logger) *CronHandler {
	return &CronHandler{materializer: materializer, dispatcher: dispatcher, loc: loc, logger: logger}
}

type cronResponse struct {
	OK       bool   `json:"ok"`
	Date     string `json:"date"`
	Notified int    `json:"notified"`
	Failures int    `json:"failures"`
}

// Daily runs the day's materialization and reminder dispatch. External
// schedulers hit this once a day; re-runs are safe.
func (h *CronHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := rota.Today(h.loc)

	if _, err := h.materializer.EnsureAssignments(date); err != nil {
		h.logger.Error("cron materialize", "date", date.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to materialize assignments")
		return
	}

	res, err := h.dispatcher.DispatchDaily(r.Context(), date)
	if err != nil {
		h.logger.Error("cron dispatch", "date", date.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to dispatch reminders")
		return
	}

	h.logger.Info("cron run complete", "date", date.String(), "notified", res.Notified, "failures", res.Failures)

	writeJSON(w, http.StatusOK, cronResponse{
		OK:       true,
		Date:     date.String(),
		Notified: res.Notified,
		Failures: res.Failures,
	})
}
