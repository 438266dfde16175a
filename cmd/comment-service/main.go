package main

import (
	"log"
	"net/http"
	"time"

	"editorial_platform/internal/clients"
	"editorial_platform/internal/config"
	"editorial_platform/internal/handlers"
	"editorial_platform/internal/metrics"
	"editorial_platform/internal/repository"
	"editorial_platform/internal/service"

	"github.com/go-chi/chi/v5"
)

func main() {
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
	commentRepo := repository.NewCommentRepository(pool)

	// ---------- clients ----------
	postClient := clients.NewPostClient(cfg.PostServiceURL, 3, 5*time.Second)

	// ---------- services ----------
	commentService := service.NewCommentService(commentRepo, postClient, logger)

	// ---------- handlers ----------
	h := handlers.NewCommentHandler(commentService)

	// ---------- router ----------
	r := chi.NewRouter()
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/api/comments", h.Add)
	r.Get("/api/comments/post/{postId}", h.ListForPost)
	r.Put("/api/comments/{id}", h.Edit)
	r.Delete("/api/comments/{id}", h.Delete)

	// ---------- start server ----------
	addr := ":" + cfg.HTTPPort
	log.Println("comment-service starting on", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
