package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-bistro-api/internal/middleware"
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel sets the level of the package logger
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// renderer answers either the fragment alone, for partial refreshes, or the fragment
// wrapped with the page context every full page needs.
type renderer struct {
	catalog services.CatalogService
}

func (r renderer) render(c *gin.Context, status int, fragment interface{}, page gin.H) {
	if middleware.IsPartial(c) {
		c.JSON(status, fragment)
		return
	}

	categories, err := r.catalog.ListCategories()
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	body := gin.H{"data": fragment, "categories": categories}
	for k, v := range page {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps service errors onto API errors. notFoundCode names the missing resource.
func respondError(c *gin.Context, err error, notFoundCode string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(notFoundCode, err.Error()))
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrConflict, err.Error()))
	default:
		log.WithFields(logrus.Fields{
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "internal server error"))
	}
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(code, message))
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, models.ErrBadRequest, "invalid "+param+" format")
		return 0, false
	}
	return uint(id), true
}

// truthy accepts the checkbox style values sent by the menu filters
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on":
		return true
	}
	return false
}

// exclusionFor returns the allergens the caller does not want to see.
// Anonymous callers and show_all requests see the whole menu.
func exclusionFor(c *gin.Context, users services.UserService) ([]uint, error) {
	if truthy(c.Query("show_all")) {
		return nil, nil
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil, nil
	}
	return users.GetExcludedAllergens(userID)
}

func errorIsConflict(err error) bool {
	return errors.Is(err, services.ErrConflict)
}
