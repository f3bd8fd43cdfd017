package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/slotbox/internal/auth"
	"github.com/danmuck/slotbox/internal/logging"
	"github.com/danmuck/slotbox/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config configures the admin HTTP listener. A non-empty AuthToken
// puts the data routes behind a bearer token; probes and metrics stay
// open.
type Config struct {
	ListenAddr  string
	DeviceID    string
	CORSOrigins []string
	AuthToken   string
}

// Server serves the admin surface for one box.
type Server struct {
	cfg     Config
	view    View
	router  *gin.Engine
	started time.Time
}

func NewServer(cfg Config, view View) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.DeviceID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CORSOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:     cfg,
		view:    view,
		router:  r,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		h := s.view.Health()
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"uptime":         time.Since(s.started).String(),
			"device_id":      h.DeviceID,
			"device_ms":      h.UptimeMS,
			"active_profile": h.ActiveProfile,
			"objects":        h.Objects,
			"version":        "0.0.1",
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":     true,
			"uptime":    time.Since(s.started).String(),
			"device_id": s.cfg.DeviceID,
			"version":   "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	data := s.router.Group("/", tokenGuard(s.cfg.AuthToken))

	data.GET("/objects", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"objects": s.view.Objects()})
	})

	data.GET("/profiles", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"profiles": s.view.Profiles()})
	})

	data.GET("/eeprom", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.view.Storage())
	})
}

// tokenGuard rejects data-route requests lacking the shared token.
// An empty configured token leaves the surface open.
func tokenGuard(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	v := auth.StaticToken{Token: token}
	return func(c *gin.Context) {
		presented, ok := auth.Bearer(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if err := v.Validate(presented); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

// Serve runs the listener until ctx is canceled, then shuts the server
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.ListenAddr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("admin.Server.Serve listening addr=%q device_id=%q", s.cfg.ListenAddr, s.cfg.DeviceID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
