package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/enkhbat/rota/internal/handler"
	"github.com/enkhbat/rota/internal/live"
	"github.com/enkhbat/rota/internal/middleware"
	"github.com/enkhbat/rota/internal/notify"
	"github.com/enkhbat/rota/internal/push"
	"github.com/enkhbat/rota/internal/schedule"
	"github.com/enkhbat/rota/internal/store"
)

// Options carries the externally configured collaborators. Chat may be a
// disabled client and Push may be nil; dispatch degrades accordingly.
type Options struct {
	BaseURL    string
	CronSecret string
	Chat       notify.Messenger
	Push       *push.Service
	Location   *time.Location
	Logger     *slog.Logger
}

type Server struct {
	db          *sql.DB
	hub         *live.Hub
	assignmentH *handler.AssignmentHandler
	dutyH       *handler.DutyHandler
	rotationH   *handler.RotationHandler
	memberH     *handler.MemberHandler
	cronH       *handler.CronHandler
	cronSecret  string
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, opts Options) *Server {
	logger := opts.Logger
	hub := live.NewHub(logger.With("component", "live"))

	memberStore := store.NewMemberStore(db)
	dutyStore := store.NewDutyStore(db)
	rotationStore := store.NewRotationStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	pushStore := store.NewPushStore(db)

	materializer := schedule.NewMaterializer(
		dutyStore, memberStore, rotationStore, assignmentStore,
		hub, logger.With("component", "materializer"),
	)
	completer := schedule.NewCompleter(assignmentStore, hub, logger.With("component", "completer"))
	dispatcher := notify.NewDispatcher(
		assignmentStore, dutyStore, memberStore,
		opts.Chat, opts.Push, pushStore,
		opts.BaseURL, logger.With("component", "dispatch"),
	)

	return &Server{
		db:          db,
		hub:         hub,
		assignmentH: handler.NewAssignmentHandler(materializer, completer, dutyStore, memberStore, opts.Location, logger.With("component", "assignment")),
		dutyH:       handler.NewDutyHandler(dutyStore, logger.With("component", "duty")),
		rotationH:   handler.NewRotationHandler(rotationStore, dutyStore, memberStore, logger.With("component", "rotation")),
		memberH:     handler.NewMemberHandler(memberStore, logger.With("component", "member")),
		cronH:       handler.NewCronHandler(materializer, dispatcher, opts.Location, logger.With("component", "cron")),
		cronSecret:  opts.CronSecret,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", live.Handler(s.hub))

	mux.HandleFunc("GET /api/today", s.assignmentH.Today)
	mux.HandleFunc("GET /api/day/{date}", s.assignmentH.Day)
	mux.HandleFunc("POST /api/assignments/{id}/done", s.assignmentH.MarkDone)

	mux.HandleFunc("GET /api/duties", s.dutyH.List)
	mux.HandleFunc("GET /api/rotations", s.rotationH.List)
	mux.HandleFunc("POST /api/rotations/{dutyKey}", s.rotationH.Upsert)
	mux.HandleFunc("GET /api/members", s.memberH.List)

	// Scheduler-facing trigger: shared secret plus a brute-force brake.
	cronGate := middleware.CronSecret(s.cronSecret)
	cronLimit := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 30, time.Minute)
	mux.Handle("GET /api/cron/daily", cronLimit(cronGate(http.HandlerFunc(s.cronH.Daily))))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// RateLimiter exposes the limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}
