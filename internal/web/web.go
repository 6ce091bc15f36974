package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"dayview/internal/config"
	appLog "dayview/internal/log"
	"dayview/internal/view"
)

// Server exposes the day view over HTTP: JSON geometry for API consumers,
// the rendered SVG/HTML for browsers, and the last captured preview PNG.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	// In-memory cache of built day views keyed by date, to avoid running
	// the parse/layout/render pipeline on every request.
	viewMu    sync.RWMutex
	viewCache map[string]*cachedView
}

type cachedView struct {
	day       *view.Day
	updatedAt time.Time
}

const viewCacheTTL = 30 * time.Second

// NewServer constructs a new Server.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:       cfg,
		mux:       http.NewServeMux(),
		viewCache: make(map[string]*cachedView),
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

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password disables auth rather than locking the
	// UI behind unusable credentials.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="dayview", charset="UTF-8"`)
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

// StartServer starts an HTTP server bound to cfg.Listen.
func StartServer(_ context.Context, cfg *config.Config) error {
	s := NewServer(cfg)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/layout", s.handleLayout)
	s.mux.HandleFunc("/day.svg", s.handleDaySVG)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	s.mux.HandleFunc("/", s.handleDayHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// layoutResponse is the JSON response shape for /api/layout.
type layoutResponse struct {
	Date             string    `json:"date"`
	RegionWidth      float64   `json:"region_width"`
	HeightPerMinute  float64   `json:"height_per_minute"`
	SlotMinutes      int       `json:"slot_minutes"`
	HoursColumnWidth float64   `json:"hours_column_width"`
	Tiles            []tileDTO `json:"tiles"`
}

// tileDTO is a JSON-friendly view of one laid-out event.
type tileDTO struct {
	CalendarID string    `json:"calendar_id"`
	UID        string    `json:"uid"`
	Summary    string    `json:"summary"`
	Location   string    `json:"location,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`

	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

// handleLayout returns the computed geometry for one day.
//
// GET /api/layout?date=2026-03-16
// date defaults to today.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	day, ok := s.dayFor(w, r)
	if !ok {
		return
	}

	v := s.cfg.View
	resp := layoutResponse{
		Date:             day.Date.Format("2006-01-02"),
		RegionWidth:      v.RegionWidth,
		HeightPerMinute:  v.HeightPerMinute,
		SlotMinutes:      v.SlotMinutes,
		HoursColumnWidth: v.HoursColumnWidth,
		Tiles:            make([]tileDTO, 0, len(day.Events)),
	}
	for _, ev := range day.Events {
		rect := day.Rects[ev.Key()]
		resp.Tiles = append(resp.Tiles, tileDTO{
			CalendarID: ev.CalendarID,
			UID:        ev.UID,
			Summary:    ev.Summary,
			Location:   ev.Location,
			Start:      ev.Start,
			End:        ev.End,
			Top:        rect.Top,
			Height:     rect.Height,
			Left:       rect.Left,
			Width:      rect.Width,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDaySVG(w http.ResponseWriter, r *http.Request) {
	day, ok := s.dayFor(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(day.SVG))
}

func (s *Server) handleDayHTML(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	day, ok := s.dayFor(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(day.HTML))
}

// handlePreview serves the last rendered PNG preview from disk.
// http.ServeFile returns the appropriate status for missing files.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.PreviewPath)
}

// dayFor resolves the requested date, builds (or reuses) the day view and
// writes an error response itself when the date is malformed.
func (s *Server) dayFor(w http.ResponseWriter, r *http.Request) (*view.Day, bool) {
	date := time.Now()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date; want YYYY-MM-DD")
			return nil, false
		}
		date = parsed
	}

	key := date.Format("2006-01-02")
	now := time.Now()

	s.viewMu.RLock()
	cached := s.viewCache[key]
	s.viewMu.RUnlock()
	if cached != nil && now.Sub(cached.updatedAt) < viewCacheTTL {
		return cached.day, true
	}

	day, errs := view.BuildDay(s.cfg, date)
	for _, err := range errs {
		appLog.Error("day view build reported source error", err, "date", key)
	}

	s.viewMu.Lock()
	// Drop expired entries so browsing many dates cannot grow the cache
	// without bound.
	for k, cv := range s.viewCache {
		if now.Sub(cv.updatedAt) >= viewCacheTTL {
			delete(s.viewCache, k)
		}
	}
	s.viewCache[key] = &cachedView{day: day, updatedAt: time.Now()}
	s.viewMu.Unlock()

	return day, true
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
