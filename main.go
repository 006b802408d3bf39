package main

import (
	"log"
	"strings"

	"payment-service/config"
	"payment-service/controllers"
	"payment-service/database"
	"payment-service/kafka"
	"payment-service/models"
	"payment-service/repository"
	"payment-service/routes"
	"payment-service/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentService] failed to load config:", err)
	}

	// Connect DB
	if err := database.Connect(cfg.DSN()); err != nil {
		log.Fatal("[PaymentService] failed to connect to DB:", err)
	}

	if err := database.DB.AutoMigrate(&models.PaymentOrder{}); err != nil {
		log.Fatal("[PaymentService] failed to migrate PaymentOrder model:", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[PaymentService] failed to initialize logger:", err)
	}
	defer logger.Sync()

	orderRepo := repository.NewGormOrderRepo(database.DB)

	// Gateway + Kafka setup
	gateway := services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	producer := kafka.NewPaymentEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.PaymentEventsTopic, logger)
	defer producer.Close()

	paymentSvc := services.NewPaymentService(
		gateway,
		orderRepo,
		producer,
		logger,
		cfg.RazorpayKeyID,
		cfg.RazorpayKeySecret,
		cfg.MerchantDisplayName,
	)
	refundSvc := services.NewRefundService(gateway, logger)
	webhookSvc := services.NewWebhookService(paymentSvc, cfg.RazorpayWebhookSecret, logger)

	// HTTP server
	r := gin.New()
	r.Use(gin.Recovery())

	pc := &controllers.PaymentController{Payments: paymentSvc, Logger: logger}
	rc := &controllers.RefundController{Refunds: refundSvc, Logger: logger}
	wc := &controllers.WebhookController{Webhooks: webhookSvc, Logger: logger}
	routes.RegisterRoutes(r, pc, rc, wc, cfg.JWTSecret)

	logger.Info("payment service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[PaymentService] server failed:", err)
	}
}
