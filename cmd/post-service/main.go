package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"editorial_platform/internal/auth"
	"editorial_platform/internal/cache"
	"editorial_platform/internal/clients"
	"editorial_platform/internal/config"
	"editorial_platform/internal/handlers"
	"editorial_platform/internal/metrics"
	"editorial_platform/internal/repository"
	"editorial_platform/internal/service"

	"github.com/go-chi/chi/v5"
)

func main() {
	ctx := context.Background()
	logger := log.Default()

	// ---------- config ----------
	cfg := config.Load()

	// ---------- metrics ----------
	metrics.Register()

	// ---------- db ----------
	pool, err := repository.NewPool(cfg.DBDSN)
	if err != nil {
		log.Fatal("db:", err)
	}

	// ---------- repositories ----------
	postRepo := repository.NewPostRepository(pool)

	// ---------- redis ----------
	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	cache.StartRedisSizeCollector(ctx, redisCache.Client(), 15*time.Second, logger)

	// ---------- clients ----------
	reviewClient := clients.NewReviewClient(cfg.ReviewServiceURL, 3, 5*time.Second)

	// ---------- services ----------
	postService := service.NewPostService(postRepo, reviewClient, redisCache, logger)

	// ---------- handlers ----------
	h := handlers.NewPostHandler(postService, redisCache, cfg.CacheTTL)

	// ---------- router ----------
	r := chi.NewRouter()
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	// публичное чтение
	r.Get("/api/posts/published", h.ListPublished)
	r.Get("/api/posts/published/{id}", h.GetPublished)

	// авторы и редакторы
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleAuthor, auth.RoleEditor))

		r.Post("/api/posts", h.CreateOrUpdateDraft)
		r.Put("/api/posts/{id}", h.EditPost)
	})

	// только редактор
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleEditor))

		r.Get("/api/posts/drafts", h.ListDrafts)
		r.Get("/api/posts/{id}", h.GetSummary)
	})

	// внутренний вызов review-service при approve
	r.Put("/api/posts/{id}/publish", h.Publish)

	// ---------- start server ----------
	addr := ":" + cfg.HTTPPort
	log.Println("post-service starting on", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
