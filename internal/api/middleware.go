package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/havenhome/haven-core/internal/auth"
)

// Unexported context key type so nothing outside this package can collide
// with our request-scoped values.
type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyCallerID
)

// callerID returns the authenticated user ID stashed by authMiddleware,
// or "" on routes that never passed through it.
func callerID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyCallerID).(string) //nolint:errcheck // empty string on missing value is the contract
	return id
}

// requestIDMiddleware tags every request with an ID for log correlation.
// A client-supplied X-Request-ID wins so IDs survive proxy hops; otherwise
// a fresh UUID is issued. The ID is echoed back in the response.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

// loggingMiddleware emits one structured line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		begin := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(begin).Milliseconds(),
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
	})
}

// recoveryMiddleware converts handler panics into a logged 500 instead of
// a dropped connection.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered in HTTP handler",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", r.Context().Value(ctxKeyRequestID),
				)
				writeInternalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsHeaders are the static header values corsMiddleware attaches to
// cross-origin responses, computed once at server construction.
type corsHeaders struct {
	methods string
	headers string
}

func newCORSHeaders(methods, headers []string) corsHeaders {
	h := corsHeaders{
		methods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		headers: "Authorization, Content-Type, X-Request-ID",
	}
	if len(methods) > 0 {
		h.methods = strings.Join(methods, ", ")
	}
	if len(headers) > 0 {
		h.headers = strings.Join(headers, ", ")
	}
	return h
}

// corsMiddleware reflects allowed origins and short-circuits preflight
// OPTIONS requests with 204.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(origin) {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Methods", s.cors.methods)
			hdr.Set("Access-Control-Allow-Headers", s.cors.headers)
			hdr.Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// originAllowed reports whether origin may make cross-origin calls.
// An empty allow-list means permit everything, which suits local dev.
func (s *Server) originAllowed(origin string) bool {
	allowed := s.cfg.CORS.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// Request bodies are capped at 1 MB. Nothing in the API legitimately
// needs more, and MaxBytesReader stops oversized uploads early.
const maxRequestBodySize = 1 << 20

func (s *Server) bodySizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware resolves the caller from a bearer token and puts the
// user ID in the context. Every downstream handler scopes its repository
// calls to that ID.
//
// Browsers cannot set headers on a WebSocket handshake, so a ?token=
// query parameter is accepted as a fallback.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		claims, err := auth.ParseToken(token, s.secCfg.JWT.Secret)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), ctxKeyCallerID, claims.Subject)))
	})
}
