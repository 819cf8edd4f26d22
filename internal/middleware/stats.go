package middleware

import (
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Stats counts request outcomes across the process lifetime.
type Stats struct {
	mu         sync.Mutex
	started    time.Time
	requests   int64
	success    int64
	notFound   int64
	validation int64
	failures   int64
	totalTime  time.Duration
}

func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// Middleware records status-class counters and total handling time.
func (s *Stats) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.mu.Lock()
		s.requests++
		s.totalTime += time.Since(start)
		switch status := ww.Status(); {
		case status == http.StatusNotFound:
			s.notFound++
		case status == http.StatusBadRequest:
			s.validation++
		case status >= 500:
			s.failures++
		default:
			s.success++
		}
		s.mu.Unlock()
	})
}

// Snapshot returns the current counters for the health endpoint.
func (s *Stats) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	avg := time.Duration(0)
	if s.requests > 0 {
		avg = s.totalTime / time.Duration(s.requests)
	}
	return map[string]any{
		"uptime":     time.Since(s.started).String(),
		"requests":   s.requests,
		"success":    s.success,
		"notfound":   s.notFound,
		"validation": s.validation,
		"failures":   s.failures,
		"avg_time":   avg.String(),
	}
}
