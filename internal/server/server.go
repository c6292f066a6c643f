// Package server exposes the admin HTTP API: search, reindex triggers,
// progress polling, and document deletion.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stratec/assetsearch/internal/docindex"
	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/queue"
	"github.com/stratec/assetsearch/internal/reindex"
	"github.com/stratec/assetsearch/internal/search"
)

// Server wires the HTTP surface over the indexing subsystem.
type Server struct {
	facade     *search.Facade
	reindexer  *reindex.Reindexer
	tracker    *progress.Tracker
	dispatcher *queue.Dispatcher
	store      docindex.Store
	log        *slog.Logger

	http *http.Server
}

// New builds the server listening on addr.
func New(addr string, facade *search.Facade, reindexer *reindex.Reindexer,
	tracker *progress.Tracker, dispatcher *queue.Dispatcher,
	store docindex.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		facade:     facade,
		reindexer:  reindexer,
		tracker:    tracker,
		dispatcher: dispatcher,
		store:      store,
		log:        log,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())

	api := router.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/search", s.handleSearch)
		api.POST("/reindex", s.handleReindex)
		api.GET("/reindex/progress", s.handleProgress)
		api.DELETE("/documents/:id", s.handleDeleteDocument)
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("http_server_listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the route tree for in-process serving and tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http_request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	count, err := s.store.DocCount()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"documents":     count,
		"queue_pending": s.dispatcher.Pending(),
	})
}

// handleSearch answers free-text queries, optionally restricted to one
// entity type. Malformed queries read as empty results, never errors.
func (s *Server) handleSearch(c *gin.Context) {
	q := c.Query("q")
	typ := c.Query("type")

	var hits []search.SearchHit
	var err error
	if typ != "" {
		hits, err = s.facade.SearchByType(c.Request.Context(), q, typ)
	} else {
		hits, err = s.facade.Search(c.Request.Context(), q)
	}
	if err != nil {
		s.log.Error("search_failed", slog.String("query", q), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits, "count": len(hits)})
}

// handleReindex kicks off a full rebuild in the background. The run slot
// is claimed before the response, so racing triggers get exactly one 202
// and a 409 each for the rest.
func (s *Server) handleReindex(c *gin.Context) {
	// Detached from the request: the rebuild outlives the response
	if err := s.reindexer.Start(context.Background()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a reindex run is already active"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (s *Server) handleProgress(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Snapshot())
}

// handleDeleteDocument enqueues a fire-and-forget delete. Always 204: a
// failed index delete is invisible to the caller by policy.
func (s *Server) handleDeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if err := s.dispatcher.Enqueue(c.Request.Context(), queue.DeleteJob{ID: id}); err != nil {
		s.log.Warn("delete_enqueue_failed",
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
	c.Status(http.StatusNoContent)
}
