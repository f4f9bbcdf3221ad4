package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kidcanvas/config"
	"kidcanvas/database"
	adminapi "kidcanvas/internal/api/admin"
	artworksapi "kidcanvas/internal/api/artworks"
	authapi "kidcanvas/internal/api/auth"
	"kidcanvas/internal/api/billing"
	childrenapi "kidcanvas/internal/api/children"
	familiesapi "kidcanvas/internal/api/families"
	insightsapi "kidcanvas/internal/api/insights"
	"kidcanvas/internal/api/plans"
	socialapi "kidcanvas/internal/api/social"
	stripewebhooks "kidcanvas/internal/api/stripewebhook"
	"kidcanvas/internal/api/users"
	routes "kidcanvas/internal/app/http"
	"kidcanvas/internal/authn"
	"kidcanvas/internal/infra/aitag"
	"kidcanvas/internal/infra/events"
	"kidcanvas/internal/infra/imaging"
	"kidcanvas/internal/infra/mailer"
	"kidcanvas/internal/infra/pgstore"
	"kidcanvas/internal/infra/storage"
	"kidcanvas/internal/infra/tasks"
	"kidcanvas/internal/usecase/artwork"
	"kidcanvas/pkg/logger"
)

func main() {
	cfg := config.LoadEnv()
	l := logger.New(cfg.Log.Level)
	gin.SetMode(cfg.HTTP.GinMode)

	db, err := database.InitDB(cfg.DB.URL, gin.IsDebugging())
	if err != nil {
		l.Fatal(err, "main - database.InitDB")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			l.Error(err, "main - database.Close")
		}
	}()
	l.Info("database connected and migrated")

	// Infrastructure
	objects := storage.New(storage.Config{
		Bucket:    cfg.S3.Bucket,
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		PublicURL: cfg.S3.PublicURL,
	})
	if err := objects.Ready(); err != nil {
		l.Warn("object storage not configured, uploads will fail: %v", err)
	} else {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := objects.Ping(pingCtx); err != nil {
			l.Warn("object storage unreachable: %v", err)
		}
		cancel()
	}

	ai := aitag.New(aitag.Config{
		APIKey:   cfg.AI.APIKey,
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
		Timeout:  cfg.AI.Timeout,
	})
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Password: cfg.SMTP.Password,
	}, l)

	runner := tasks.New(l, cfg.Tasks.Workers, cfg.Tasks.QueueSize, cfg.Tasks.Timeout)
	runner.Start()

	publisher := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	store := pgstore.New(db)

	// Use cases
	quota := artwork.NewQuotaChecker(store)
	tagger := artwork.NewTagger(store, ai, l)
	uploader := artwork.NewUploader(store, objects, imaging.New(), quota, tagger, runner, publisher, l)
	deleter := artwork.NewDeleter(store, objects, runner, publisher, l)

	// Auth
	tokens := authn.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.SessionTTL)
	resolver := authn.NewResolver(
		authn.BearerTokenStrategy{Tokens: tokens},
		authn.SessionCookieStrategy{Tokens: tokens, Name: cfg.Auth.CookieName},
	)

	r := gin.New()
	r.Use(gin.Recovery(), gin.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.HTTP.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Resolver: resolver,
		Owners:   store,
		Auth:     authapi.New(db, tokens, cfg, mail, runner, l),
		Users:    users.New(db, l),
		Billing:  billing.New(db, cfg.Stripe.SecretKey, cfg.HTTP.AppURL, l),
		Plans:    plans.New(db, cfg.Stripe.SecretKey, cfg.Stripe.ProductID, l),
		Webhook:  stripewebhooks.New(db, cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, l),
		Admin:    adminapi.New(db, l),
		Artworks: artworksapi.New(artworksapi.Options{
			DB:             db,
			Store:          store,
			Uploader:       uploader,
			Deleter:        deleter,
			Tagger:         tagger,
			Logger:         l,
			MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		}),
		Families: familiesapi.New(db, store, mail, runner, l, cfg.HTTP.AppURL),
		Children: childrenapi.New(db, store, l),
		Social:   socialapi.New(db, store, l),
		Insights: insightsapi.New(db, store, objects, l),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		l.Info("http server listening on :%s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error(err, "main - srv.ListenAndServe")
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Tasks.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(err, "main - srv.Shutdown")
	}
	// drain queued emails, tags and events before closing their sinks
	if err := runner.Shutdown(shutdownCtx); err != nil {
		l.Error(err, "main - runner.Shutdown")
	}
	if err := publisher.Close(); err != nil {
		l.Error(err, "main - publisher.Close")
	}
}
