package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"editorial_platform/internal/auth"
	"editorial_platform/internal/clients"
	"editorial_platform/internal/config"
	"editorial_platform/internal/handlers"
	"editorial_platform/internal/kafka"
	"editorial_platform/internal/metrics"
	"editorial_platform/internal/repository"
	"editorial_platform/internal/service"
	"editorial_platform/internal/sse"

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
	metrics.StartDBCollectors(ctx, pool, 15*time.Second, logger)

	// ---------- repositories ----------
	reviewRepo := repository.NewReviewRepository(pool)
	outboxRepo := repository.NewOutboxRepository(pool, cfg.OutboxMaxRetries)

	// ---------- clients ----------
	postClient := clients.NewPostClient(cfg.PostServiceURL, 3, 5*time.Second)

	// ---------- services ----------
	dispatcher := service.NewDispatcher(outboxRepo, cfg.KafkaTopic, logger)
	reviewService := service.NewReviewService(pool, reviewRepo, dispatcher, postClient, logger)

	// ---------- kafka producer + outbox sender ----------
	producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Fatal("kafka producer:", err)
	}

	sender := service.NewOutboxSender(
		outboxRepo,
		producer,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxRetentionDays,
		cfg.OutboxMaxRetries,
		logger,
	)
	sender.Start(ctx)

	// ---------- sse hub ----------
	hub := sse.NewHub(cfg.SubscriberBuffer, logger)
	sseHandler := sse.NewHandler(hub, cfg.SubscriberIdle, logger)

	// ---------- kafka consumer ----------
	relay := service.NewOutcomeRelay(hub, logger)
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, relay, logger)
	if err != nil {
		log.Fatal("kafka consumer:", err)
	}
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Fatal("kafka consumer loop:", err)
		}
	}()

	// ---------- handlers ----------
	h := handlers.NewReviewHandler(reviewService)

	// ---------- router ----------
	r := chi.NewRouter()
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	// внутренние вызовы post-service
	r.Post("/reviews/submit", h.Submit)
	r.Delete("/reviews/pending/{postId}", h.DeletePending)
	r.Get("/reviews/has-active-review", h.HasActiveReview)

	// live-уведомления об исходах ревью
	r.Get("/reviews/notifications", sseHandler.Stream)

	// только редактор
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleEditor))

		r.Get("/reviews", h.List)
		r.Put("/reviews/{reviewId}/approve", h.Approve)
		r.Put("/reviews/{reviewId}/reject", h.Reject)
	})

	// ---------- start server ----------
	addr := ":" + cfg.HTTPPort
	log.Println("review-service starting on", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
