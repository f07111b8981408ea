// Package server exposes the tailoring flow over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/career-tailor/pkg/pipeline"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Extractor turns a spoken or written transcript into a position.
type Extractor interface {
	ExtractExperience(ctx context.Context, transcript string) (position repository.Position, err error)
}

// Options wires the server's collaborators. Analyses and Pending may be nil,
// in which case their routes answer 503.
type Options struct {
	Pipeline  *pipeline.Pipeline
	Extractor Extractor
	Analyses  store.AnalysisStore
	Pending   *store.PendingStore
	Logger    *logrus.Logger
}

// Server is the HTTP API.
type Server struct {
	pipeline  *pipeline.Pipeline
	extractor Extractor
	analyses  store.AnalysisStore
	pending   *store.PendingStore
	logger    *logrus.Logger
	engine    *gin.Engine
}

// New creates a server with every route registered.
func New(opts Options) (s *Server) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s = &Server{
		pipeline:  opts.Pipeline,
		extractor: opts.Extractor,
		analyses:  opts.Analyses,
		pending:   opts.Pending,
		logger:    logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	s.RegisterRoutes(engine)
	s.engine = engine

	return s
}

// RegisterRoutes attaches the API routes to engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", s.Health)

	api := engine.Group("/api")
	api.POST("/analyze-jd", s.AnalyzeJD)
	api.POST("/match", s.Match)
	api.POST("/generate", s.Generate)
	api.POST("/generate-all", s.GenerateAll)
	api.POST("/tailor", s.Tailor)
	api.POST("/extract-experience", s.ExtractExperience)
	api.GET("/pending", s.ListPending)
	api.POST("/parse-resume", s.ParseResume)
	api.GET("/analyses", s.ListAnalyses)
	api.POST("/analyses", s.CreateAnalysis)
	api.GET("/analyses/:id", s.GetAnalysis)
	api.DELETE("/analyses/:id", s.DeleteAnalysis)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() (handler http.Handler) {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) (err error) {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{"addr": addr}).Info("server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err = httpServer.Shutdown(shutdownCtx)
	if err != nil {
		err = errors.Wrap(err, "server shutdown failed")
		return err
	}

	s.logger.Info("server stopped")
	return err
}

func (s *Server) requestLogger() (middleware gin.HandlerFunc) {
	middleware = func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(started).String(),
		}).Debug("request")
	}
	return middleware
}
