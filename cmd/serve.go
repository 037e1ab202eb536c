package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/vnkhanh/podcastr-backend/config"
	"github.com/vnkhanh/podcastr-backend/controllers"
	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/repository"
	"github.com/vnkhanh/podcastr-backend/routes"
	"github.com/vnkhanh/podcastr-backend/services"
	"github.com/vnkhanh/podcastr-backend/storage"
	"github.com/vnkhanh/podcastr-backend/ws"
)

const (
	portFlag        = "port"
	autoMigrateFlag = "auto-migrate"
)

func makeServeCMD() cli.Command {
	return cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves the HTTP API",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:   portFlag,
				Usage:  "http listening port",
				EnvVar: "PORT",
			},
			cli.BoolFlag{
				Name:   autoMigrateFlag,
				Usage:  "run migrations before serving",
				EnvVar: "AUTO_MIGRATE",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg := config.Load()
	if port := c.String(portFlag); port != "" {
		cfg.Port = port
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if c.Bool(autoMigrateFlag) {
		if err := config.Migrate(db); err != nil {
			return err
		}
	}

	blobs, err := storage.New(cfg)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	podcastService := services.NewPodcastService(repository.NewPodcastRepository(db), users, blobs)

	hub := ws.NewHub(podcastService, cfg.SearchDebounce)
	podcastService.OnChange(hub.NotifyChanged)

	ctx := context.Background()
	var synth services.Synthesizer
	if gs, err := services.NewGoogleSynthesizer(ctx, cfg.GoogleTTSCredentials); err != nil {
		log.WithError(err).Warn("text-to-speech disabled")
	} else {
		defer gs.Close()
		synth = gs
	}
	var writer services.ScriptWriter
	if gw, err := services.NewGeminiScriptWriter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		log.WithError(err).Warn("script drafting disabled")
	} else {
		defer gw.Close()
		writer = gw
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.SetupRouter(r, routes.Deps{
		Podcasts:  controllers.NewPodcastController(podcastService),
		Media:     controllers.NewMediaController(services.NewMediaService(blobs, synth, writer)),
		Auth:      controllers.NewAuthController(users, cfg.GoogleClientID),
		Feed:      controllers.NewFeedController(podcastService, cfg.PublicURL),
		Health:    controllers.NewHealthController(db, hub),
		Hub:       hub,
		RateLimit: middleware.NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateWindow),
	})

	// driver memory: tự phục vụ blob cho môi trường local
	if mem, ok := blobs.(*storage.MemoryStore); ok {
		r.GET("/blobs/*storageId", func(c *gin.Context) {
			data, contentType, found := mem.Get(strings.TrimPrefix(c.Param("storageId"), "/"))
			if !found {
				c.Status(http.StatusNotFound)
				return
			}
			c.Data(http.StatusOK, contentType, data)
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("server running at port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
