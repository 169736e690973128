package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go-locator/internal/config"
	"go-locator/internal/database"
	"go-locator/internal/logger"
	"go-locator/internal/models"
	"go-locator/internal/orchestrator"

	"github.com/gin-gonic/gin"
)

// searchRequest reads /search query parameters. category defaults to
// accommodation and radius to the configured default.
func (s *Server) searchRequest(c *gin.Context) (orchestrator.Request, error) {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		return orchestrator.Request{}, fmt.Errorf("%w: address is required", errBadRequest)
	}

	radius := s.opts.DefaultRadiusKm
	if v := c.Query("radius"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return orchestrator.Request{}, fmt.Errorf("%w: invalid radius %q", errBadRequest, v)
		}
		radius = n
	}

	category, err := models.ParseCategory(c.DefaultQuery("category", string(models.CategoryAccommodation)))
	if err != nil {
		return orchestrator.Request{}, err
	}

	return orchestrator.Request{
		Address:   address,
		RadiusKm:  config.ClampRadius(radius),
		Category:  category,
		Keyword:   c.Query("keywords"),
		CustomURL: strings.TrimSpace(c.Query("custom_url")),
	}, nil
}

// start launches a run that outlives the HTTP request.
func (s *Server) start(c *gin.Context, req orchestrator.Request) (*orchestrator.Run, error) {
	return s.searcher.Start(context.WithoutCancel(c.Request.Context()), req)
}

// search returns stored listings for the category when there are any,
// otherwise (or with refresh=true) runs a search and returns its results.
func (s *Server) search(c *gin.Context) {
	req, err := s.searchRequest(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	if !refresh {
		cached, err := s.store.Find(c.Request.Context(), req.Category.Collection(), database.Filter{"category": string(req.Category)})
		if err != nil {
			s.fail(c, err)
			return
		}
		if len(cached) > 0 {
			c.JSON(http.StatusOK, gin.H{"source": "cache", "count": len(cached), "results": cached})
			return
		}
	}

	run, err := s.start(c, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("🔍 Search started", logger.Fields{"run_id": run.ID, "category": string(req.Category)})

	select {
	case <-run.Done():
	case <-c.Request.Context().Done():
		return
	}

	sum, err := run.Wait()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":  "search",
		"run_id":  run.ID,
		"count":   len(sum.Results),
		"results": sum.Results,
		"summary": sum,
	})
}

// searchStream runs a search and forwards its progress events as
// server-sent events until the terminal one.
func (s *Server) searchStream(c *gin.Context) {
	req, err := s.searchRequest(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	run, err := s.start(c, req)
	if err != nil {
		s.fail(c, err)
		return
	}

	log := logger.FromContext(c.Request.Context()).WithFields(logger.Fields{"run_id": run.ID})
	log.Info("📡 Streaming search", nil)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Run-ID", run.ID)

	events := run.Events(c.Request.Context())
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(eventName(ev), ev)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			log.Info("SSE client disconnected", nil)
			return
		}
	}
}

func eventName(ev orchestrator.Event) string {
	switch {
	case ev.Error:
		return "error"
	case ev.Terminal():
		return "completed"
	default:
		return "progress"
	}
}
