package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router is a chi mux with the standard middleware stack installed.
type Router struct {
	*chi.Mux
}

// NewRouter creates a [Router] that tags, logs and recovers every request.
//
// Extra middleware runs after the standard stack, in the order given.
func NewRouter(logger *log.Logger, extra ...Middleware) *Router {
	if logger == nil {
		logger = log.Default()
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, middleware.RealIP, RequestLogger(logger), middleware.Recoverer)
	for _, m := range extra {
		mux.Use(m)
	}
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return &Router{Mux: mux}
}

// Handler registers every route of h.
func (r *Router) Handler(h Handler) {
	h.Mount(r.Mux)
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if id := middleware.GetReqID(r.Context()); id != "" {
				fields = append(fields, "request_id", id)
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				logger.Error("request", fields...)
			case ww.Status() >= http.StatusBadRequest:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

// BearerToken rejects requests that do not carry token. An empty token disables the check.
func BearerToken(token string) Middleware {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
