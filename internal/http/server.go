package http

import (
	"container/list"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pokerhub/internal/backend"
	"pokerhub/internal/core"
	applog "pokerhub/internal/log"
	"pokerhub/internal/services"
)

// LRU cache with TTL and size-based eviction
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries
func (c *lruCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element

	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.removeElement(elem)
	}

	return len(toRemove)
}

// cachedLedger decorates the ledger reader with a per-club LRU cache.
// Writers must call invalidate after every append or delete.
type cachedLedger struct {
	backend backend.Backend
	cache   *lruCache[[]core.SessionEntry]
}

func (c *cachedLedger) Load(ctx context.Context, club string) ([]core.SessionEntry, error) {
	if entries, found := c.cache.Get(club); found {
		slog.DebugContext(ctx, "Ledger cache hit", "club", club, "rows", len(entries))
		result := make([]core.SessionEntry, len(entries))
		copy(result, entries)
		return result, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	entries, err := c.backend.Load(cctx, club)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", club, err)
	}

	c.cache.Set(club, entries)
	return entries, nil
}

func (c *cachedLedger) invalidate(club string) {
	c.cache.Delete(club)
}

type Server struct {
	http.Server
	backend     backend.Backend
	ledger      *cachedLedger
	reports     *services.ReportService
	rateLimiter *rateLimiter
	audit       *applog.StructuredLogger

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, b backend.Backend) *Server {
	mux := http.NewServeMux()

	ledger := &cachedLedger{
		backend: b,
		cache:   newLRUCache[[]core.SessionEntry](100, 5*time.Minute),
	}

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr: addr,
			// Middleware seeds every request context with the base logger;
			// withMiddleware then scopes it per request.
			Handler: applog.Middleware(logger)(mux),
		},
		backend:          b,
		ledger:           ledger,
		reports:          services.NewReportService(ledger, b),
		rateLimiter:      newRateLimiter(),
		audit:            applog.NewStructuredLogger(logger),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/clubs", s.withMiddleware(s.handleListClubs))
	mux.HandleFunc("GET /api/clubs/{club}/ledger", s.withMiddleware(s.handleLedger))
	mux.HandleFunc("GET /api/clubs/{club}/periods", s.withMiddleware(s.handlePeriods))
	mux.HandleFunc("GET /api/clubs/{club}/reports/personal", s.withMiddleware(s.handlePersonalReport))
	mux.HandleFunc("GET /api/clubs/{club}/reports/club", s.withMiddleware(s.handleClubReport))
	mux.HandleFunc("POST /api/clubs/{club}/sessions", s.withMiddleware(s.handleCreateSessions))
	mux.HandleFunc("DELETE /api/clubs/{club}/sessions/{id}", s.withMiddleware(s.handleDeleteSession))
	mux.HandleFunc("POST /api/clubs/{club}/import", s.withMiddleware(s.handleImport))

	return s
}

// startCacheCleanup runs periodic cleanup for the ledger cache
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.ledger.cache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request logging.
// A request-scoped logger carrying the request id goes into the context so
// handlers and the audit logger tag their output with it.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		reqLogger := applog.FromContext(r.Context()).With(applog.FieldRequestID, generateRequestID())
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		s.audit.LogHTTPStart(ctx, r, clientIP)

		// Mutating requests are rate limited per client
		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			reqLogger.WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.audit.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
