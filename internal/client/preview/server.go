// Package preview serves the working manifest over local HTTP so a test
// device (or curl) can poll it exactly as it would poll the published file,
// and exposes the device list, history and an update check for inspection.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/gophrelease/internal/devices"
	"github.com/dmitrijs2005/gophrelease/internal/history"
	"github.com/dmitrijs2005/gophrelease/internal/logging"
	"github.com/dmitrijs2005/gophrelease/internal/manifest"
)

// ManifestPath is where the manifest is served, mirroring the published file.
const ManifestPath = "/system_update.json"

const shutdownTimeout = 5 * time.Second

// View is the read side of the console the server needs.
type View interface {
	Serialize() ([]byte, error)
	Devices() devices.Snapshot
	History() []history.Entry
	Simulate(installed string) manifest.CheckResult
}

type Server struct {
	address string
	view    View
	logger  logging.Logger
	now     func() time.Time
}

func NewServer(address string, view View, l logging.Logger) *Server {
	return &Server{
		address: address,
		view:    view,
		logger:  l.With("module", "preview"),
		now:     time.Now,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK\n"))
	}).Methods(http.MethodGet)
	r.HandleFunc(ManifestPath, s.handleManifest).Methods(http.MethodGet, http.MethodHead)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/history/{id}", s.handleHistoryEntry).Methods(http.MethodGet)
	api.HandleFunc("/check", s.handleCheck).Methods(http.MethodGet)
	return r
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.address)
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run with a caller-provided listener.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping preview server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting preview server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug(r.Context(), "preview request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	data, err := s.view.Serialize()
	if err != nil {
		s.logger.Error(r.Context(), "serialize manifest", "error", err)
		writeError(w, http.StatusInternalServerError, "could not serialize manifest")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

type deviceView struct {
	devices.Device
	Online bool `json:"online"`
}

type devicesResponse struct {
	Devices   []deviceView `json:"devices"`
	Total     int          `json:"total"`
	Online    int          `json:"online"`
	FetchedAt *time.Time   `json:"fetched_at,omitempty"`
	Stale     bool         `json:"stale"`
}

func (s *Server) handleDevices(w http.ResponseWriter, _ *http.Request) {
	snap := s.view.Devices()
	now := s.now()

	resp := devicesResponse{
		Devices: make([]deviceView, 0, len(snap.Devices)),
		Total:   len(snap.Devices),
		Stale:   snap.Stale,
	}
	for _, d := range snap.Devices {
		online := devices.IsOnline(d, now)
		if online {
			resp.Online++
		}
		resp.Devices = append(resp.Devices, deviceView{Device: d, Online: online})
	}
	if !snap.FetchedAt.IsZero() {
		at := snap.FetchedAt
		resp.FetchedAt = &at
	}
	writeJSON(w, http.StatusOK, resp)
}

type historyItem struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	LatestVersion string    `json:"latest_version"`
	Versions      int       `json:"versions"`
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	entries := s.view.History()
	out := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyItem{
			ID:            e.ID,
			Timestamp:     e.Timestamp,
			LatestVersion: e.Data.LatestVersion,
			Versions:      len(e.Data.Updates),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	for _, e := range s.view.History() {
		if e.ID == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeError(w, http.StatusNotFound, "history entry not found")
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	installed := strings.TrimSpace(r.URL.Query().Get("version"))
	if installed == "" {
		writeError(w, http.StatusBadRequest, "version query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, s.view.Simulate(installed))
}
