package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"

	"aprswav/internal/aprs"
	"aprswav/internal/ax25"
	"aprswav/internal/metrics"
)

const (
	maxRequestBytes = 64 << 10
	shutdownTimeout = 10 * time.Second
)

// Encoder builds a transmission and writes it to a WAV file
type Encoder interface {
	EncodeAndWrite(source, destination string, path []string, info string) (string, error)
	PositionInfo(pos s2.LatLng, symbolTable, symbolCode byte, comment string) string
}

// Config contains HTTP server configuration
type Config struct {
	Address string
	Port    int

	// Used when a request leaves the field empty
	Source      string
	Destination string
	Path        []string
}

// EncodeRequest is the JSON body of POST /api/v1/encode. Either Info or
// Position must be set; Position builds a timestamped position report.
type EncodeRequest struct {
	Source      string           `json:"source"`
	Destination string           `json:"destination"`
	Path        []string         `json:"path"`
	Info        string           `json:"info"`
	Position    *PositionRequest `json:"position,omitempty"`
}

// PositionRequest describes a position report
type PositionRequest struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	SymbolTable string  `json:"symbol_table"`
	SymbolCode  string  `json:"symbol_code"`
	Comment     string  `json:"comment"`
}

// HTTPServer serves the encode API
type HTTPServer struct {
	server  *http.Server
	config  Config
	encoder Encoder
	logger  *logrus.Logger
	metrics *metrics.Metrics

	startTime time.Time

	// Output files have one-second names; writes are serialized so each
	// response carries its own audio.
	writeMu sync.Mutex
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(cfg Config, encoder Encoder, logger *logrus.Logger, m *metrics.Metrics) *HTTPServer {
	h := &HTTPServer{
		config:    cfg,
		encoder:   encoder,
		logger:    logger,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port)),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/encode", h.withMetrics("/api/v1/encode", h.handleEncode))
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))
	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics.Handler())
	}
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// Handler returns the routing handler
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

// Addr returns the configured listen address
func (h *HTTPServer) Addr() string {
	return h.server.Addr
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(ww, r)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(ww.statusCode), time.Since(start).Seconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (h *HTTPServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.server.Addr, err)
	}
	return h.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (h *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	h.logger.WithField("address", ln.Addr().String()).Info("Starting HTTP API server")

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	h.logger.Info("Stopping HTTP API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

func (h *HTTPServer) handleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req EncodeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	info, err := h.info(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	source := firstNonEmpty(req.Source, h.config.Source)
	destination := firstNonEmpty(req.Destination, h.config.Destination)
	path := req.Path
	if path == nil {
		path = h.config.Path
	}

	h.writeMu.Lock()
	filename, err := h.encoder.EncodeAndWrite(source, destination, path, info)
	var file *os.File
	if err == nil {
		file, err = os.Open(filename)
	}
	h.writeMu.Unlock()

	if err != nil {
		if errors.Is(err, ax25.ErrEncoding) || errors.Is(err, ax25.ErrInvalidSSID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Encode request failed")
		writeError(w, http.StatusInternalServerError, "failed to encode transmission")
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		h.logger.WithError(err).Error("Failed to stat output file")
		writeError(w, http.StatusInternalServerError, "failed to read transmission")
		return
	}

	name := filepath.Base(filename)
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, stat.ModTime(), file)
}

func (h *HTTPServer) info(req EncodeRequest) (string, error) {
	if req.Position == nil {
		if req.Info == "" {
			return "", errors.New("one of info or position is required")
		}
		return req.Info, nil
	}
	if req.Info != "" {
		return "", errors.New("info and position are mutually exclusive")
	}

	p := req.Position
	table, err := symbolByte(p.SymbolTable, aprs.DefaultSymbolTable)
	if err != nil {
		return "", fmt.Errorf("symbol_table: %w", err)
	}
	code, err := symbolByte(p.SymbolCode, aprs.DefaultSymbolCode)
	if err != nil {
		return "", fmt.Errorf("symbol_code: %w", err)
	}

	return h.encoder.PositionInfo(aprs.LatLng(p.Latitude, p.Longitude), table, code, p.Comment), nil
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	})
}

func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "aprswav",
		"endpoints": map[string]string{
			"POST /api/v1/encode": "Encode an APRS report to a WAV file",
			"GET /health":         "Service health check",
			"GET /metrics":        "Prometheus metrics",
		},
	})
}

func symbolByte(s string, def byte) (byte, error) {
	switch len(s) {
	case 0:
		return def, nil
	case 1:
		if s[0] < 0x21 || s[0] > 0x7E {
			return 0, fmt.Errorf("%w: %q", ax25.ErrEncoding, s)
		}
		return s[0], nil
	default:
		return 0, fmt.Errorf("must be a single character, got %q", s)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
