// Package api exposes search runs and the stored listings over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"go-locator/internal/database"
	"go-locator/internal/logger"
	"go-locator/internal/merge"
	"go-locator/internal/models"
	"go-locator/internal/orchestrator"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// Searcher starts orchestrator runs.
type Searcher interface {
	Start(ctx context.Context, req orchestrator.Request) (*orchestrator.Run, error)
}

type Options struct {
	DefaultRadiusKm int
	AllowedOrigins  []string
	Log             logger.Logger
}

type Server struct {
	searcher Searcher
	store    database.Store
	writer   *merge.Writer
	schema   *listingSchema
	opts     Options
	log      logger.Logger
	router   *gin.Engine
}

func New(searcher Searcher, store database.Store, opts Options) *Server {
	if opts.DefaultRadiusKm == 0 {
		opts.DefaultRadiusKm = 10
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		searcher: searcher,
		store:    store,
		writer:   merge.NewWriter(store),
		schema:   mustListingSchema(),
		opts:     opts,
		log:      log.WithFields(logger.Fields{"component": "api"}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(s.log), RequestLogger())

	r.GET("/", s.health)
	r.GET("/search", s.search)
	r.GET("/search/stream", s.searchStream)

	listings := r.Group("/listings")
	listings.GET("/:category", s.listListings)
	listings.PUT("/:category", s.putListing)
	listings.DELETE("/:category", s.deleteListing)
	return r
}

// Handler returns the router wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", TraceHeader},
		ExposedHeaders: []string{TraceHeader},
		MaxAge:         300,
	})(s.router)
}

func (s *Server) health(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if err := s.store.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"message": "Locator API is running!",
		"status":  status,
	})
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrMissingLink),
		errors.Is(err, database.ErrUnknownField),
		errors.Is(err, database.ErrUnknownCollection):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrGeocode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("❌ Request failed", err, logger.Fields{"path": c.FullPath()})
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
