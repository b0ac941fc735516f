package captionserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/anatolykoptev/go_captions/internal/engine"
	"github.com/anatolykoptev/go_captions/internal/engine/captions"
	"github.com/anatolykoptev/go_captions/internal/engine/sources"
)

const maxRequestBody = 64 << 10

// Options configures the HTTP router.
type Options struct {
	AllowedOrigins []string      // empty = "*"
	Metrics        func() string // nil = engine.FormatMetrics
}

// NewRouter returns the caption endpoint handler with CORS and request logging.
func NewRouter(f CaptionFetcher, opts Options) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Metrics == nil {
		opts.Metrics = engine.FormatMetrics
	}

	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	h := &captionHandler{fetcher: f}
	r.Handle("/captions", h)
	r.Handle("/youtube-captions", h)

	r.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, opts.Metrics())
	}).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// captionRequest is the POST body. videoId may itself be a URL.
type captionRequest struct {
	VideoID  string `json:"videoId"`
	VideoURL string `json:"videoUrl"`
	Lang     string `json:"lang"`
}

// captionJSON is the degraded JSON response shape read by the viewer.
type captionJSON struct {
	VideoID   string                `json:"videoId,omitempty"`
	Captions  captions.Sequence     `json:"captions"`
	TrackInfo *sources.CaptionTrack `json:"trackInfo,omitempty"`
	Error     string                `json:"error,omitempty"`
	Details   string                `json:"details,omitempty"`
}

type captionHandler struct {
	fetcher CaptionFetcher
}

func (h *captionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req captionRequest
	switch r.Method {
	case http.MethodOptions:
		writeText(w, http.StatusOK, "ok")
		return
	case http.MethodGet:
		q := r.URL.Query()
		req.VideoURL = q.Get("videoUrl")
		req.VideoID = q.Get("videoId")
		req.Lang = q.Get("lang")
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			h.fail(w, r, fmt.Errorf("read request body: %w", err))
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				h.fail(w, r, fmt.Errorf("invalid request body: %w", err))
				return
			}
		}
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	input := req.VideoID
	if input == "" {
		input = req.VideoURL
	}

	res, err := fetchCaptions(r.Context(), h.fetcher, input, req.Lang)
	if err != nil {
		sources.LogFetchError(input, err)
		h.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, captionJSON{
			VideoID:   res.VideoID,
			Captions:  nonNil(res.Captions),
			TrackInfo: &res.Track,
		})
		return
	}
	writeText(w, http.StatusOK, res.VTT)
}

// fail writes a pipeline error. Text responses are always 500; the JSON variant
// reports a video without captions as a 200 with an empty list.
func (h *captionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	msg := errorMessage(err)
	if !wantsJSON(r) {
		writeText(w, http.StatusInternalServerError, msg)
		return
	}
	var nt *sources.NoTracksError
	if errors.As(err, &nt) {
		writeJSON(w, http.StatusOK, captionJSON{
			Captions: captions.Sequence{},
			Error:    "No captions available",
			Details:  nt.Reason,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, captionJSON{
		Captions: captions.Sequence{},
		Error:    msg,
	})
}

func errorMessage(err error) string {
	if errors.Is(err, sources.ErrInvalidInput) {
		return "Invalid YouTube URL"
	}
	return err.Error()
}

func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func nonNil(seq captions.Sequence) captions.Sequence {
	if seq == nil {
		return captions.Sequence{}
	}
	return seq
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("http: encode response failed", slog.Any("error", err))
	}
}

// loggingMiddleware tags each request with an id and logs its outcome.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		slog.Info("http request",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.statusCode),
			slog.Duration("duration", time.Since(start)))
	})
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
