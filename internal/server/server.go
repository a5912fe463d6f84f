// Package server exposes the generated dataset over HTTP: health, read,
// replace, per-event participant lists and athlete search.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"

	"github.com/kingrea/sportsmeet/internal/dataset"
	"github.com/kingrea/sportsmeet/internal/search"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

const (
	defaultSearchLimit = 50
	indexTTL           = 10 * time.Minute
)

// Logger is the subset of logging used by the server.
type Logger interface {
	Printf(format string, args ...any)
}

// Server wraps the HTTP listener and handlers backing the dataset API.
type Server struct {
	settings Settings
	store    *Store
	indexes  *cache.Cache
	logger   Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a dataset server using the provided settings.
func NewServer(settings Settings, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		store:    NewStore(settings.DataFile),
		indexes:  cache.New(indexTTL, 2*indexTTL),
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routed API without binding a listener.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodHead, http.MethodOptions)
	api.HandleFunc("/data", s.handleGetData).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/data", s.handlePostData).Methods(http.MethodPost)
	api.HandleFunc("/players/{event}", s.handlePlayers).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet, http.MethodOptions)
	if s.settings.DataFile != "" {
		dir := filepath.Dir(s.settings.DataFile)
		r.PathPrefix("/data/").Handler(http.StripPrefix("/data/", http.FileServer(http.Dir(dir))))
	}
	// Unmatched requests bypass router middleware.
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		setCORSHeaders(w)
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		setCORSHeaders(w)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	return r
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server: server is nil")
	}
	if s.settings.DataFile == "" {
		return fmt.Errorf("server: data file is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server: already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("server: serve error: %v", err)
		}
	}()
	s.logger.Printf("server: listening on %s (data file %s)", listener.Addr().String(), s.settings.DataFile)
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Server) timestamp() string {
	return s.now().Format(time.RFC3339)
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}

type healthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	DataFile      string `json:"dataFile"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

type updateResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Timestamp:     s.timestamp(),
		DataFile:      s.store.Path(),
		UptimeSeconds: s.uptimeSeconds(),
	})
}

func (s *Server) handleGetData(w http.ResponseWriter, _ *http.Request) {
	data, err := s.store.LoadRaw()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePostData(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "empty body"})
		return
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "payload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unable to read body"})
		return
	}
	doc, err := dataset.Decode(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid dataset", Details: err.Error()})
		return
	}
	if err := s.store.Replace(body); err != nil {
		s.logger.Printf("server: update dataset: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to update dataset", Details: err.Error()})
		return
	}
	s.logger.Printf("server: dataset updated (%d events with participants)", doc.Players.Len())
	writeJSON(w, http.StatusOK, updateResponse{Success: true, Message: "dataset updated", Timestamp: s.timestamp()})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["event"]
	doc, err := s.store.Load()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	entry, ok := doc.Players.Get(label)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found", Details: label})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	idx, err := s.searchIndex()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	results := idx.Search(query, limit)
	if results == nil {
		results = []search.Athlete{}
	}
	writeJSON(w, http.StatusOK, results)
}

// searchIndex returns the athlete index of the current dataset file, reusing
// the cached one while the file is unchanged.
func (s *Server) searchIndex() (*search.Index, error) {
	version := s.store.Version()
	if version != "" {
		if cached, ok := s.indexes.Get(version); ok {
			return cached.(*search.Index), nil
		}
	}
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	idx := search.NewIndex(doc)
	if version != "" {
		s.indexes.Set(version, idx, cache.DefaultExpiration)
	}
	return idx, nil
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, dataset.ErrNoDocument) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "dataset file does not exist"})
		return
	}
	s.logger.Printf("server: read dataset: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read dataset", Details: err.Error()})
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
