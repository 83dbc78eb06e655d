package placeholder

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

const (
	// DefaultPort matches the legacy backend.
	DefaultPort = 4000
	// DefaultAPIURL is where the real API is expected.
	DefaultAPIURL = "http://localhost:8000/api/"
)

// Options configure the handler.
type Options struct {
	// APIURL is advertised in every response. Empty uses DefaultAPIURL.
	APIURL string
	Logger *slog.Logger
}

type handler struct {
	apiURL string
	logger *slog.Logger
}

// NewHandler builds the router:
//
//	GET /api/health  -> 200 {"ok": true, "note": ...}
//	GET /            -> 200 text
//	*   /api/...     -> 501 {"error": ...}
func NewHandler(opts Options) http.Handler {
	h := &handler{apiURL: opts.APIURL, logger: opts.Logger}
	if h.apiURL == "" {
		h.apiURL = DefaultAPIURL
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/health", h.health).Methods(http.MethodGet)
	r.PathPrefix("/api/").HandlerFunc(h.notImplemented)
	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.Use(h.cors, h.logRequests)
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"note": "Placeholder only; use the asset API at " + h.apiURL,
	})
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Placeholder server. Use the asset API at %s\n", h.apiURL)
}

func (h *handler) notImplemented(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusNotImplemented, map[string]string{
		"error": "Not implemented here. Use the asset API at " + h.apiURL,
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("encode response", "error", err)
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (h *handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
