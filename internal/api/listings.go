package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-locator/internal/database"
	"go-locator/internal/filter"
	"go-locator/internal/logger"
	"go-locator/internal/merge"
	"go-locator/internal/models"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

func categoryParam(c *gin.Context) (models.Category, error) {
	return models.ParseCategory(c.Param("category"))
}

// listListings returns the stored listings of a category narrowed by the
// dashboard filters in the query string.
func (s *Server) listListings(c *gin.Context) {
	category, err := categoryParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	criteria, err := filter.FromQuery(c.Request.URL.Query())
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	stored, err := s.store.Find(c.Request.Context(), category.Collection(), database.Filter{"category": string(category)})
	if err != nil {
		s.fail(c, err)
		return
	}
	listings := filter.Apply(stored, criteria)
	if listings == nil {
		listings = []models.Listing{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(listings), "listings": listings})
}

// putListing inserts or replaces one listing edited by hand. A row without
// a link gets a generated one.
func (s *Server) putListing(c *gin.Context) {
	category, err := categoryParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := s.schema.Validate(body); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var l models.Listing
	if err := json.Unmarshal(body, &l); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	l.Category = category
	if l.Source == "" {
		l.Source = "Manual"
	}
	l.EnsureLink()
	l.ApplyDefaults()
	if err := l.Validate(); err != nil {
		s.fail(c, err)
		return
	}

	action, saved, err := s.writer.Apply(c.Request.Context(), category.Collection(), l)
	if err != nil {
		s.fail(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("✏️ Listing saved", logger.Fields{"link": saved.Link, "action": action.String()})

	code := http.StatusOK
	if action == merge.Insert {
		code = http.StatusCreated
	}
	c.JSON(code, gin.H{"action": action.String(), "listing": saved})
}

func (s *Server) deleteListing(c *gin.Context) {
	category, err := categoryParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	link := strings.TrimSpace(c.Query("link"))
	if link == "" {
		s.fail(c, fmt.Errorf("%w: link is required", errBadRequest))
		return
	}
	if err := s.store.Delete(c.Request.Context(), category.Collection(), link); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
