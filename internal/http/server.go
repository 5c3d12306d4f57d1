package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"planner/internal/archive"
	"planner/internal/core"
	"planner/internal/log"
	"planner/internal/middleware/ratelimit"
	"planner/internal/middleware/security"
	"planner/internal/middleware/trace"
	"planner/internal/planner"
	"planner/internal/playback"
)

// Player is the playback surface exposed under /api/playback.
type Player interface {
	Authenticated() bool
	SetToken(ctx context.Context, token string) error
	Logout() error
	Search(ctx context.Context, query string) ([]playback.Track, error)
	Play(ctx context.Context, uri string) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	SetVolume(ctx context.Context, percent int) error
	State(ctx context.Context) (*playback.State, error)
}

// Options carries the dependencies of the API server. Player and Ready may
// be nil.
type Options struct {
	Addr               string
	Planner            *planner.Planner
	Archive            *archive.Builder
	Player             Player
	Ready              func(ctx context.Context) error
	RateLimitPerMinute int
	Logger             *log.Logger
	Now                func() time.Time
}

type Server struct {
	http.Server
	planner  *planner.Planner
	archive  *archive.Builder
	player   Player
	ready    func(ctx context.Context) error
	logger   *log.Logger
	now      func() time.Time
	started  time.Time
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	// mu pairs the month switch with the operation that follows it.
	mu           sync.Mutex
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		planner:  opts.Planner,
		archive:  opts.Archive,
		player:   opts.Player,
		ready:    opts.Ready,
		logger:   opts.Logger,
		now:      opts.Now,
		started:  opts.Now(),
		detector: security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			WritesOnly:        true,
			Now:               opts.Now,
		}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	s.registerMonthRoutes(mux)
	s.registerDayRoutes(mux)
	s.registerProjectRoutes(mux)
	s.registerArchiveRoutes(mux)
	s.registerPlaybackRoutes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(handler)
	handler = s.withDetection(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// RunMaintenance sweeps idle rate-limit clients until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context) error {
	return s.limiter.Run(ctx)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// apiHandler is a handler whose error is written by writeError.
type apiHandler func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(h apiHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			writeError(w, r, err)
		}
	}
}

// inMonth switches the planner to the request's month and runs fn while no
// other request can move it.
func (s *Server) inMonth(r *http.Request, fn func(p *planner.Planner) error) error {
	scope, err := parseScope(r.URL.Query(), s.now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.switchMonth(r.Context(), scope); err != nil {
		return err
	}
	return fn(s.planner)
}

func (s *Server) switchMonth(ctx context.Context, scope core.Scope) error {
	if s.planner.Scope() == scope {
		return nil
	}
	return s.planner.SetMonth(ctx, scope)
}

func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				"user_agent", r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.tracer.GetMetrics()
	NewJSONResponse().Data(map[string]any{
		"status":            "ok",
		"timestamp":         s.now().Format(time.RFC3339),
		"uptime":            s.now().Sub(s.started).Round(time.Second).String(),
		"requests":          metrics.TotalRequests,
		"avgResponseMicros": metrics.AverageResponseTime,
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			NewJSONResponse().Status(http.StatusServiceUnavailable).Data(map[string]string{
				"status": "not_ready",
				"store":  err.Error(),
			}).Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready", "store": "ok"}).Write(w)
}
