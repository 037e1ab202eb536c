package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/services"
)

// identityFrom returns nil for anonymous requests.
func identityFrom(c *gin.Context) *services.Identity {
	email := c.GetString(middleware.ContextUserEmail)
	if email == "" {
		return nil
	}
	return &services.Identity{UserID: c.GetString(middleware.ContextUserID), Email: email}
}

func respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrPodcastNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": message, "details": err.Error()})
	case errors.Is(err, services.ErrGeneratorUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": message, "details": err.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error(message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}
