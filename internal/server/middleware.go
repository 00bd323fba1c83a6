package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"voterroll/internal/auth"
	"voterroll/internal/metrics"

	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

type contextKey string

const contextKeySubject contextKey = "subject"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		elapsed := time.Since(started)
		metrics.ObserveHTTP(r.Method, rw.statusCode, elapsed)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": elapsed.Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth checks the bearer token and adds its subject to the context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			s.writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		claims, err := s.verifier.Verify(r.Context(), raw)
		if err != nil {
			if errors.Is(err, auth.ErrNotConfigured) {
				s.logger.WithError(err).Error("admin request rejected, token verification not configured")
				s.writeMessage(w, http.StatusServiceUnavailable, "Authentication is not configured")
				return
			}

			s.logger.WithError(err).Debug("rejected bearer token")
			s.writeMessage(w, http.StatusForbidden, "Invalid or expired token.")
			return
		}

		s.logger.WithField("subject", claims.Subject).Debug("authenticated admin")

		ctx := context.WithValue(r.Context(), contextKeySubject, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func subjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(contextKeySubject).(string)
	return subject
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireSystemEnabled turns admin traffic away while the remote system
// switch is off.
func (s *Service) RequireSystemEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.gate.IsEnabled(r.Context()) {
			s.writeMessage(w, http.StatusServiceUnavailable, "System is currently disabled")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) newRateLimit(formatted string) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate limit %q: %w", formatted, err)
	}

	mw := stdlib.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			s.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests, please try again later"})
		}),
	)

	return mw.Handler, nil
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// only safe methods are redirected; a redirected POST loses its body
		if path != "/" && strings.HasSuffix(path, "/") && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
