package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/toodo/internal/database"
	"github.com/dukerupert/toodo/internal/handler"
	"github.com/dukerupert/toodo/internal/live"
	"github.com/dukerupert/toodo/internal/middleware"
	"github.com/dukerupert/toodo/internal/retention"
	"github.com/dukerupert/toodo/internal/settings"
	"github.com/dukerupert/toodo/internal/store"
	"github.com/dukerupert/toodo/internal/tracker"
	ws "github.com/dukerupert/toodo/internal/websocket"
)

// Config holds the tunables that come from the environment.
type Config struct {
	UndoWindow        time.Duration
	RetentionInterval time.Duration
	// ClearLimit caps POST /api/clear calls per client per minute. Zero
	// disables the limit.
	ClearLimit int
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	feed        *live.Feed
	tracker     *tracker.Tracker
	provider    settings.Provider
	policy      *retention.Policy
	scheduler   *retention.Scheduler
	rateLimiter *middleware.RateLimiter
	clearLimit  int

	taskH     *handler.TaskHandler
	prizeH    *handler.PrizeHandler
	pointsH   *handler.PointsHandler
	settingsH *handler.SettingsHandler
	adminH    *handler.AdminHandler

	cancel context.CancelFunc
	logger *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	taskStore := store.NewTaskStore(db)
	prizeStore := store.NewPrizeStore(db)
	ledgerStore := store.NewLedgerStore(db)
	settingsStore := store.NewSettingsStore(db)
	provider := settings.NewStoreProvider(settingsStore)

	s := &Server{
		db:          db,
		hub:         hub,
		provider:    provider,
		rateLimiter: middleware.NewRateLimiter(),
		clearLimit:  cfg.ClearLimit,
		logger:      logger,
	}

	// The feed loader reads through the tracker so prizes are seeded before
	// the first snapshot.
	s.feed = live.NewFeed(func() (live.State, error) {
		return s.loadState(taskStore)
	}, logger.With("component", "live"))

	notifier := tracker.Notifiers{hub, s.feed}
	s.tracker = tracker.New(taskStore, prizeStore, ledgerStore, provider, notifier, logger.With("component", "tracker"), tracker.Config{
		UndoWindow: cfg.UndoWindow,
	})

	s.policy = retention.NewPolicy(taskStore, provider, logger.With("component", "retention"))
	onPurge := func(res retention.Result) {
		notifier.Changed("task", "purged", 0)
	}
	s.scheduler = retention.NewScheduler(s.policy, cfg.RetentionInterval, onPurge, logger.With("component", "retention"))

	s.taskH = handler.NewTaskHandler(s.tracker, logger.With("component", "task"))
	s.prizeH = handler.NewPrizeHandler(s.tracker, logger.With("component", "prize"))
	s.pointsH = handler.NewPointsHandler(s.tracker, logger.With("component", "points"))
	s.settingsH = handler.NewSettingsHandler(settingsStore, provider, func() {
		notifier.Changed("settings", "updated", 0)
	}, logger.With("component", "settings"))
	s.adminH = handler.NewAdminHandler(s.tracker, s.policy, onPurge, logger.With("component", "admin"))

	return s
}

func (s *Server) loadState(tasks *store.TaskStore) (live.State, error) {
	all, err := tasks.List()
	if err != nil {
		return live.State{}, err
	}
	total, err := s.tracker.TotalPoints()
	if err != nil {
		return live.State{}, err
	}
	ledger, err := s.tracker.Ledger()
	if err != nil {
		return live.State{}, err
	}
	prizes, err := s.tracker.Prizes()
	if err != nil {
		return live.State{}, err
	}
	return live.State{Tasks: all, TotalPoints: total, Ledger: ledger, Prizes: prizes}, nil
}

// Tracker returns the task engine.
func (s *Server) Tracker() *tracker.Tracker {
	return s.tracker
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Feed returns the snapshot feed.
func (s *Server) Feed() *live.Feed {
	return s.feed
}

// RetentionPolicy returns the auto-delete policy.
func (s *Server) RetentionPolicy() *retention.Policy {
	return s.policy
}

// Start launches the snapshot feed and the retention scheduler.
func (s *Server) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.feed.Run(ctx)
	s.scheduler.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop halts the background workers started by Start.
func (s *Server) Stop() {
	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rateLimiter.Cleanup()
		}
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.feed, s.tracker, s.provider))

	// Task API routes
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("PUT /api/tasks/order", s.taskH.UpdateOrder)
	mux.HandleFunc("POST /api/tasks/undo", s.taskH.Undo)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/uncheck", s.taskH.Uncheck)

	// Points and history
	mux.HandleFunc("GET /api/points", s.pointsH.Total)
	mux.HandleFunc("GET /api/ledger", s.pointsH.Ledger)

	// Prize API routes
	mux.HandleFunc("GET /api/prizes", s.prizeH.List)
	mux.HandleFunc("POST /api/prizes", s.prizeH.Create)
	mux.HandleFunc("PUT /api/prizes/{id}", s.prizeH.Update)
	mux.HandleFunc("DELETE /api/prizes/{id}", s.prizeH.Delete)
	mux.HandleFunc("POST /api/prizes/{id}/redeem", s.prizeH.Redeem)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// Maintenance
	mux.HandleFunc("POST /api/clear", s.rateLimitedHandler(s.adminH.Clear))
	mux.HandleFunc("POST /api/retention/run", s.adminH.RunRetention)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		body["status"] = "unavailable"
		code = http.StatusServiceUnavailable
	} else if v, err := database.SchemaVersion(s.db); err == nil {
		body["schema_version"] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	if s.clearLimit <= 0 {
		return h
	}
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.clearLimit, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
