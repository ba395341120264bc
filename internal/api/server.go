package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Bind        string
	CORSOrigins []string
	LogLevel    string
}

// Server owns the gin engine and the http.Server around it.
type Server struct {
	cfg    ServerConfig
	engine *gin.Engine
	srv    *http.Server
	logger *log.Logger
}

// NewServer builds the engine, installs middleware and mounts h.
func NewServer(cfg ServerConfig, h *Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.Bind == "" {
		cfg.Bind = ":8000"
	}

	engine := NewEngine(cfg, logger)
	h.RegisterRoutes(engine)

	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		srv: &http.Server{
			Addr:              cfg.Bind,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewEngine returns a gin engine with recovery, CORS and, for debug and info
// levels, access logging.
func NewEngine(cfg ServerConfig, logger *log.Logger) *gin.Engine {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if lvl := strings.ToLower(cfg.LogLevel); lvl == "debug" || lvl == "info" || lvl == "" {
		engine.Use(accessLog(logger))
	}
	engine.Use(CORS(cfg.CORSOrigins))
	return engine
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Bind)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Bind, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Printf("API listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down api server: %w", err)
	}
	<-errCh
	s.logger.Printf("API stopped")
	return nil
}

func accessLog(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// CORS allows GET and OPTIONS from the listed origins. "*" allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
