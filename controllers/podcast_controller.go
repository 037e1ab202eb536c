package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
)

type PodcastAPI interface {
	GetPodcastByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error)
	GetAllPodcasts(ctx context.Context) ([]models.Podcast, error)
	GetTrendingPodcasts(ctx context.Context) ([]models.Podcast, error)
	GetPodcastByVoiceType(ctx context.Context, podcastID uuid.UUID) ([]models.Podcast, error)
	GetPodcastByAuthorID(ctx context.Context, authorID string) (*services.AuthorPodcasts, error)
	GetPodcastBySearch(ctx context.Context, term string) ([]models.Podcast, error)
	CreatePodcast(ctx context.Context, identity *services.Identity, in services.CreatePodcastInput) (*models.Podcast, error)
	UpdatePodcast(ctx context.Context, identity *services.Identity, id uuid.UUID, in services.UpdatePodcastInput) (*models.Podcast, error)
	DeletePodcast(ctx context.Context, id uuid.UUID) error
	UpdatePodcastViews(ctx context.Context, id uuid.UUID) (*models.Podcast, error)
	GetURL(ctx context.Context, storageID string) (string, error)
}

type PodcastController struct {
	podcasts PodcastAPI
}

func NewPodcastController(podcasts PodcastAPI) *PodcastController {
	return &PodcastController{podcasts: podcasts}
}

func parsePodcastID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid podcast id"})
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/podcasts
func (pc *PodcastController) GetAllPodcasts(c *gin.Context) {
	podcasts, err := pc.podcasts.GetAllPodcasts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Could not list podcasts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": podcasts})
}

// GET /api/podcasts/trending
func (pc *PodcastController) GetTrendingPodcasts(c *gin.Context) {
	podcasts, err := pc.podcasts.GetTrendingPodcasts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Could not list trending podcasts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": podcasts})
}

// GET /api/podcasts/search?search=
func (pc *PodcastController) SearchPodcasts(c *gin.Context) {
	podcasts, err := pc.podcasts.GetPodcastBySearch(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err, "Search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": podcasts})
}

// GET /api/podcasts/:id, trả data: null khi không tồn tại
func (pc *PodcastController) GetPodcastByID(c *gin.Context) {
	id, ok := parsePodcastID(c)
	if !ok {
		return
	}
	podcast, err := pc.podcasts.GetPodcastByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Could not load podcast")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": podcast})
}

// GET /api/podcasts/:id/similar
func (pc *PodcastController) GetSimilarPodcasts(c *gin.Context) {
	id, ok := parsePodcastID(c)
	if !ok {
		return
	}
	podcasts, err := pc.podcasts.GetPodcastByVoiceType(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Could not list similar podcasts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": podcasts})
}

// GET /api/authors/:authorId/podcasts
func (pc *PodcastController) GetPodcastsByAuthor(c *gin.Context) {
	result, err := pc.podcasts.GetPodcastByAuthorID(c.Request.Context(), c.Param("authorId"))
	if err != nil {
		respondError(c, err, "Could not list author podcasts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// POST /api/podcasts
func (pc *PodcastController) CreatePodcast(c *gin.Context) {
	var input services.CreatePodcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	podcast, err := pc.podcasts.CreatePodcast(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		respondError(c, err, "Could not create podcast")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Podcast created", "data": podcast})
}

// PUT /api/podcasts/:id
func (pc *PodcastController) UpdatePodcast(c *gin.Context) {
	id, ok := parsePodcastID(c)
	if !ok {
		return
	}
	var input services.UpdatePodcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	podcast, err := pc.podcasts.UpdatePodcast(c.Request.Context(), identityFrom(c), id, input)
	if err != nil {
		respondError(c, err, "Could not update podcast")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Podcast updated", "data": podcast})
}

// DELETE /api/podcasts/:id
func (pc *PodcastController) DeletePodcast(c *gin.Context) {
	id, ok := parsePodcastID(c)
	if !ok {
		return
	}
	if err := pc.podcasts.DeletePodcast(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error deleting podcast")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Podcast deleted"})
}

// POST /api/podcasts/:id/views
func (pc *PodcastController) IncrementViews(c *gin.Context) {
	id, ok := parsePodcastID(c)
	if !ok {
		return
	}
	podcast, err := pc.podcasts.UpdatePodcastViews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Could not update views")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": podcast})
}

// GET /api/storage/url/*storageId (storage id có thể chứa "/")
func (pc *PodcastController) GetURL(c *gin.Context) {
	storageID := strings.TrimPrefix(c.Param("storageId"), "/")
	url, err := pc.podcasts.GetURL(c.Request.Context(), storageID)
	if err != nil {
		respondError(c, err, "Could not resolve storage url")
		return
	}
	if url == "" {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": url})
}
