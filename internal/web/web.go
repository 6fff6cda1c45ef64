package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"studyflow/internal/calendar"
	"studyflow/internal/config"
	"studyflow/internal/datekey"
	"studyflow/internal/ics"
	appLog "studyflow/internal/log"
	"studyflow/internal/model"
	"studyflow/internal/stats"
	"studyflow/internal/store"
)

// Server exposes the derivation endpoints and the record CRUD surface over
// HTTP. All derivation handlers compute from a store snapshot and an
// injected reference date; the wall clock is only read here, at the
// boundary.
type Server struct {
	cfg     *config.Config
	records *store.RecordStore
	mux     *http.ServeMux
	loc     *time.Location

	// In-memory cache for /api/grid responses to avoid re-expanding
	// recurrences on every request. Invalidated on event mutations.
	gridMu    sync.RWMutex
	gridCache *gridCache
}

// gridCache holds one cached month grid and its timestamp. The reference
// date is part of the key: the grid's "today" marking depends on it, so a
// cached grid may only be reused by callers asking about the same date.
type gridCache struct {
	year      int
	month     time.Month
	ref       datekey.DateKey
	grid      calendar.Grid
	updatedAt time.Time
}

const gridCacheTTL = 30 * time.Second

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, records *store.RecordStore) *Server {
	s := &Server{
		cfg:     cfg,
		records: records,
		mux:     http.NewServeMux(),
		loc:     resolveLocationOrLocal(cfg.Timezone),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Serve runs an http.Server on cfg.Listen and shuts it down gracefully
// when ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password is treated as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays unauthenticated for probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="studyflow", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	s.mux.HandleFunc("/api/grid", s.handleGrid)
	s.mux.HandleFunc("/api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/api/weekly", s.handleWeekly)
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.HandleFunc("/api/history", s.handleHistory)
	s.mux.HandleFunc("/calendar.ics", s.handleICS)

	s.mux.HandleFunc("/api/tasks", s.handleTasks)
	s.mux.HandleFunc("/api/tasks/toggle", s.handleTaskToggle)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/sleep", s.handleSleep)
	s.mux.HandleFunc("/api/pomodoros", s.handlePomodoros)
	s.mux.HandleFunc("/api/goals", s.handleGoals)
	s.mux.HandleFunc("/api/habits", s.handleHabits)
	s.mux.HandleFunc("/api/habits/toggle", s.handleHabitToggle)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// referenceDate resolves the injected reference date for time-relative
// computations: ?date=YYYY-MM-DD when given, else today in the configured
// timezone.
func (s *Server) referenceDate(r *http.Request) (datekey.DateKey, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return datekey.FromTime(time.Now().In(s.loc)), nil
	}
	return datekey.Parse(raw)
}

// handleGrid returns the month grid with per-day event buckets.
//
// GET /api/grid?year=2024&month=12[&date=YYYY-MM-DD]
//
// year/month default to the reference date's month.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ref, err := s.referenceDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	refTime := ref.Time()
	q := r.URL.Query()
	year := parseIntDefault(q.Get("year"), refTime.Year())
	month := time.Month(parseIntDefault(q.Get("month"), int(refTime.Month())))

	// Fast path: cached grid for the same month, still fresh. The cache
	// is cleared whenever events change, so staleness only spans the TTL
	// under a steady store.
	now := time.Now()
	s.gridMu.RLock()
	gc := s.gridCache
	s.gridMu.RUnlock()
	if gc != nil && gc.year == year && gc.month == month && gc.ref == ref && now.Sub(gc.updatedAt) < gridCacheTTL {
		writeJSON(w, http.StatusOK, gc.grid)
		return
	}

	snap := s.records.Snapshot()
	grid, err := calendar.BuildMonthGrid(year, month, snap.Events, ref, calendar.Options{
		FixedSixRows: s.cfg.FixedGrid,
	})
	if err != nil {
		appLog.Error("grid build failed", err, "year", year, "month", int(month))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.gridMu.Lock()
	s.gridCache = &gridCache{year: year, month: month, ref: ref, grid: grid, updatedAt: time.Now()}
	s.gridMu.Unlock()

	writeJSON(w, http.StatusOK, grid)
}

func (s *Server) invalidateGrid() {
	s.gridMu.Lock()
	s.gridCache = nil
	s.gridMu.Unlock()
}

// handleDashboard returns the day summary for the reference date.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ref, err := s.referenceDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.records.Snapshot()
	sum := stats.SummarizeDay(snap.Tasks, snap.SleepRecords, snap.PomodoroSessions, snap.Goals, snap.Habits, ref, s.cfg.Score)
	writeJSON(w, http.StatusOK, sum)
}

// handleWeekly returns the trailing 7-day chart data, oldest first.
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ref, err := s.referenceDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.records.Snapshot()
	writeJSON(w, http.StatusOK, stats.Weekly(snap.Tasks, snap.PomodoroSessions, ref))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.records.Snapshot()
	writeJSON(w, http.StatusOK, stats.ByCategory(snap.Tasks, s.cfg.UncategorizedLabel))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.records.History())
}

// handleICS serves the event set as a subscribable iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.records.Snapshot()
	payload, err := ics.Export(snap.Events, s.loc, time.Now())
	if err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.records.Snapshot().Tasks)
	case http.MethodPost:
		var t model.Task
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "invalid task payload")
			return
		}
		writeJSON(w, http.StatusCreated, s.records.AddTask(t))
	case http.MethodDelete:
		if err := s.records.DeleteTask(r.URL.Query().Get("id")); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTaskToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	t, err := s.records.ToggleTask(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.records.Snapshot().Events)
	case http.MethodPost:
		var ev model.CalendarEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			writeError(w, http.StatusBadRequest, "invalid event payload")
			return
		}
		stored, err := s.records.AddEvent(ev)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.invalidateGrid()
		writeJSON(w, http.StatusCreated, stored)
	case http.MethodDelete:
		if err := s.records.DeleteEvent(r.URL.Query().Get("id")); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.invalidateGrid()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSleep(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.records.Snapshot().SleepRecords)
	case http.MethodPost:
		var rec model.SleepRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			writeError(w, http.StatusBadRequest, "invalid sleep record payload")
			return
		}
		writeJSON(w, http.StatusCreated, s.records.AddSleepRecord(rec))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handlePomodoros(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.records.Snapshot().PomodoroSessions)
	case http.MethodPost:
		var p model.PomodoroSession
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid pomodoro payload")
			return
		}
		writeJSON(w, http.StatusCreated, s.records.AddPomodoroSession(p))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.records.Snapshot().Goals)
	case http.MethodPost:
		var g model.Goal
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			writeError(w, http.StatusBadRequest, "invalid goal payload")
			return
		}
		stored, err := s.records.AddGoal(g)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, stored)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.records.Snapshot().Habits)
	case http.MethodPost:
		var h model.Habit
		if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
			writeError(w, http.StatusBadRequest, "invalid habit payload")
			return
		}
		writeJSON(w, http.StatusCreated, s.records.AddHabit(h))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleHabitToggle marks or unmarks a habit completion.
//
// POST /api/habits/toggle?id=...&day=YYYY-MM-DD[&date=YYYY-MM-DD]
//
// day defaults to the reference date.
func (s *Server) handleHabitToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ref, err := s.referenceDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	day := ref
	if raw := r.URL.Query().Get("day"); raw != "" {
		day, err = datekey.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	h, err := s.records.ToggleHabitCompletion(r.URL.Query().Get("id"), day, ref)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
