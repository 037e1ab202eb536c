package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/feed"
)

type FeedController struct {
	podcasts  PodcastAPI
	publicURL string
}

func NewFeedController(podcasts PodcastAPI, publicURL string) *FeedController {
	return &FeedController{podcasts: podcasts, publicURL: publicURL}
}

// GET /rss/authors/:authorId
func (fc *FeedController) AuthorFeed(c *gin.Context) {
	authorID := c.Param("authorId")
	result, err := fc.podcasts.GetPodcastByAuthorID(c.Request.Context(), authorID)
	if err != nil {
		respondError(c, err, "Could not build feed")
		return
	}

	xml, err := feed.GenerateAuthorRSS(feed.BaseURL(fc.publicURL, c.Request), authorID, result)
	if err != nil {
		respondError(c, err, "Could not build feed")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(xml))
}
