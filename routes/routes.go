package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/controllers"
	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/ws"
)

type Deps struct {
	Podcasts  *controllers.PodcastController
	Media     *controllers.MediaController
	Auth      *controllers.AuthController
	Feed      *controllers.FeedController
	Health    *controllers.HealthController
	Hub       *ws.Hub
	RateLimit gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	r.GET("/ping", controllers.Ping)
	r.GET("/health", d.Health.HealthCheck)
	r.GET("/rss/authors/:authorId", d.Feed.AuthorFeed)
	r.GET("/ws/podcasts", d.Hub.HandlePodcastWebSocket)

	limit := d.RateLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", limit, d.Auth.Register)
		auth.POST("/login", limit, d.Auth.Login)
		auth.POST("/logingoogle", limit, d.Auth.GoogleLogin)
	}

	// Truy vấn công khai; identity (nếu có) do service quyết định
	podcasts := api.Group("/podcasts")
	podcasts.Use(middleware.OptionalAuthMiddleware())
	{
		podcasts.GET("", d.Podcasts.GetAllPodcasts)
		podcasts.GET("/trending", d.Podcasts.GetTrendingPodcasts)
		podcasts.GET("/search", d.Podcasts.SearchPodcasts)
		podcasts.GET("/:id", d.Podcasts.GetPodcastByID)
		podcasts.GET("/:id/similar", d.Podcasts.GetSimilarPodcasts)
		podcasts.POST("/:id/views", limit, d.Podcasts.IncrementViews)

		podcasts.POST("", limit, d.Podcasts.CreatePodcast)
		podcasts.PUT("/:id", limit, d.Podcasts.UpdatePodcast)
		podcasts.DELETE("/:id", middleware.AuthMiddleware(), limit, d.Podcasts.DeletePodcast)
	}

	api.GET("/authors/:authorId/podcasts", d.Podcasts.GetPodcastsByAuthor)
	api.GET("/storage/url/*storageId", d.Podcasts.GetURL)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(), limit)
	{
		protected.POST("/storage/upload", d.Media.Upload)
		protected.POST("/generate/audio", d.Media.GenerateAudio)
		protected.POST("/generate/thumbnail", d.Media.GenerateThumbnail)
		protected.POST("/generate/script", d.Media.GenerateScript)
		protected.POST("/generate/prompt-from-document", d.Media.PromptFromDocument)
	}

	return r
}
