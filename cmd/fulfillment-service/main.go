package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/docugen/fulfillment-service/internal/config"
	"github.com/docugen/fulfillment-service/internal/delivery/http/handlers"
	"github.com/docugen/fulfillment-service/internal/infrastructure/generation"
	"github.com/docugen/fulfillment-service/internal/infrastructure/kafka"
	"github.com/docugen/fulfillment-service/internal/infrastructure/mailer"
	"github.com/docugen/fulfillment-service/internal/infrastructure/metrics"
	"github.com/docugen/fulfillment-service/internal/infrastructure/migrate"
	"github.com/docugen/fulfillment-service/internal/infrastructure/payment"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/repository"
	redisinfra "github.com/docugen/fulfillment-service/internal/infrastructure/redis"
	"github.com/docugen/fulfillment-service/internal/infrastructure/storage"
	"github.com/docugen/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.OrderDB.MigrationPath != "" {
		if err := migrate.Run(db, cfg.OrderDB.MigrationPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}
	// Init redis (checkout locks, abuse counters)
	rdb := redisinfra.MustInitRedis(cfg)

	// Init repositories
	orderRepo := repository.NewDefaultOrderRepository(db)
	ticketRepo := repository.NewDefaultTicketRepository(db)
	blockRepo := repository.NewDefaultBlockRepository(db)
	inputRepo := repository.NewDefaultInputRepository(db)

	// Shared-state primitives
	locker := redisinfra.NewRedisIdentityLocker(rdb)
	compensationCounter := redisinfra.NewRedisCompensationCounter(rdb)
	rejectionCounter := redisinfra.NewRedisRejectionCounter(rdb)

	// External collaborators
	artifactStore, err := storage.NewGCSArtifactStore(context.Background(), cfg.Storage.Bucket)
	if err != nil {
		log.Fatalf("failed to init artifact store: %v", err)
	}
	primaryProvider := generation.NewHTTPProvider(
		"primary",
		cfg.Generation.Primary.URL,
		cfg.Generation.Primary.APIKey,
		cfg.Generation.Primary.Model,
		cfg.Generation.Primary.Timeout,
	)
	secondaryProvider := generation.NewHTTPProvider(
		"secondary",
		cfg.Generation.Secondary.URL,
		cfg.Generation.Secondary.APIKey,
		cfg.Generation.Secondary.Model,
		cfg.Generation.Secondary.Timeout,
	)
	renderer := generation.NewTemplateRenderer(cfg.Pipeline.RenderTimeout)
	artifactMailer := mailer.NewHTTPMailer(cfg.Mailer.URL, cfg.Mailer.APIKey, cfg.Mailer.From)
	refundClient := payment.NewHTTPRefundClient(cfg.Payment.RefundURL, cfg.Payment.APIKey)
	verifier := payment.NewWebhookVerifier(cfg.Payment.WebhookSecret, cfg.Payment.ReplayWindow)

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := kafka.NewDefaultKafkaPublisher(brokers)

	fulfillmentMetrics := metrics.NewFulfillmentMetrics()

	// Init usecases
	ticketUc := usecase.NewDefaultTicketUsecase(ticketRepo, pub, cfg.KafkaService.Topic, cfg.Pipeline.TicketSLA, fulfillmentMetrics)
	abuseUc := usecase.NewDefaultAbuseUsecase(compensationCounter, blockRepo, fulfillmentMetrics)
	reconcilerUc := usecase.NewDefaultReconcilerUsecase(inputRepo, ticketUc, cfg.Pipeline.ReconcileAttempts, cfg.Pipeline.ReconcileInterval)
	generationUc := usecase.NewDefaultGenerationUsecase(primaryProvider, secondaryProvider, ticketUc, fulfillmentMetrics)
	deliveryUc := usecase.NewDefaultDeliveryUsecase(
		orderRepo,
		renderer,
		artifactStore,
		artifactMailer,
		ticketUc,
		fulfillmentMetrics,
		cfg.Storage.ObjectPrefix,
		cfg.Pipeline.RecoveryBaseURL,
		cfg.Storage.SignedURLTTL,
	)
	fulfillmentUc := usecase.NewDefaultFulfillmentUsecase(
		orderRepo,
		blockRepo,
		locker,
		reconcilerUc,
		generationUc,
		deliveryUc,
		pub,
		cfg.KafkaService.Topic,
		fulfillmentMetrics,
	)
	checkoutUc := usecase.NewDefaultCheckoutUsecase(orderRepo, inputRepo, blockRepo, locker, cfg.Pipeline.LockTTL, cfg.Pipeline.DuplicateWindow)
	slaUc := usecase.NewDefaultSLAUsecase(ticketRepo, orderRepo, refundClient, abuseUc, ticketUc, fulfillmentMetrics)

	// HTTP delivery
	webhookHandler := handlers.NewWebhookHandler(verifier, fulfillmentUc, rejectionCounter, fulfillmentMetrics, cfg.Payment.RejectionAlert)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutUc)
	recoveryHandler := handlers.NewRecoveryHandler(orderRepo, artifactStore, cfg.Storage.SignedURLTTL)
	adminHandler := handlers.NewAdminHandler(ticketUc, slaUc, fulfillmentUc, orderRepo)

	router := gin.Default()
	router.POST("/webhooks/payment", webhookHandler.HandleEvent)
	router.POST("/checkout/init", checkoutHandler.InitiateCheckout)
	router.POST("/checkout/quiz", checkoutHandler.SaveQuizInput)
	router.GET("/recovery/:token", recoveryHandler.Recover)

	admin := router.Group("/admin")
	admin.GET("/tickets", adminHandler.ListPendingTickets)
	admin.POST("/tickets/:id/resolve", adminHandler.ResolveTicket)
	admin.POST("/tickets/:id/regenerate", adminHandler.ForceRegenerate)
	admin.POST("/tickets/:id/compensate", adminHandler.ForceCompensate)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	// SLA monitor sweep
	go func() {
		ticker := time.NewTicker(cfg.Pipeline.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := slaUc.CompensateBreachedTickets(context.Background()); err != nil {
					log.Printf("SLA sweep error: %v", err)
				}
			}
		}
	}()

	// Expired block cleanup
	go func() {
		ticker := time.NewTicker(time.Hour)
		for {
			<-ticker.C
			if err := blockRepo.DeleteExpired(time.Now().UTC()); err != nil {
				slog.Error("block cleanup failed", "error", err.Error())
			}
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("fulfillment service started on %s\n", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
