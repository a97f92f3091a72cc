package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Batussaii/BANT3D/config"
	"github.com/Batussaii/BANT3D/controllers"
	"github.com/Batussaii/BANT3D/database"
	"github.com/Batussaii/BANT3D/logger"
	"github.com/Batussaii/BANT3D/providers"
	"github.com/Batussaii/BANT3D/routes"
	"github.com/Batussaii/BANT3D/sender"
	"github.com/Batussaii/BANT3D/services"
)

// processedPaymentTTL bounds how long a reconciled transaction id is kept
// in Redis. Webhook retries arrive within days, not months.
const processedPaymentTTL = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()
	log := logger.Log

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Mail relay. A missing relay must not take the storefront down; sends
	// fail and get logged instead.
	var mailer sender.EmailSender
	smtpSender, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	if err != nil {
		log.Warn("SMTP relay not configured, notifications disabled", zap.Error(err))
		mailer = sender.DisabledSender{}
	} else {
		mailer = smtpSender
	}

	// Payment providers. Each one is optional; checkout against a missing
	// provider is rejected with a user-facing error.
	provs := make(map[string]providers.PaymentProvider)
	var stripeProvider, paypalProvider providers.PaymentProvider

	if p, err := providers.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret); err != nil {
		log.Warn("Stripe not configured", zap.Error(err))
	} else {
		stripeProvider = p
		provs[p.Name()] = p
	}
	if p, err := providers.NewPayPalProvider(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalWebhookID, cfg.PayPalEnv); err != nil {
		log.Warn("PayPal not configured", zap.Error(err))
	} else {
		paypalProvider = p
		provs[p.Name()] = p
	}

	// Processed-payment store: Redis when available, else process memory.
	var processedStore database.ProcessedPaymentStore
	if cfg.RedisURL != "" {
		redisClient := database.NewRedisClient(cfg.RedisURL)
		defer redisClient.Close()
		processedStore = database.NewRedisProcessedStore(redisClient, processedPaymentTTL)
	} else {
		log.Warn("REDIS_URL not set, payment dedup resets on restart")
		processedStore = database.NewMemoryProcessedStore()
	}

	// Dependency injection
	checkoutService := services.NewCheckoutService(provs, cfg.Currency, cfg.BaseURL, log)
	reconcileService := services.NewReconcileService(processedStore, mailer, cfg.SMTPTo, cfg.Currency, log)
	contactService := services.NewContactService(mailer, cfg.SMTPTo, log)

	checkoutController := controllers.NewCheckoutController(checkoutService)
	webhookController := controllers.NewWebhookController(stripeProvider, paypalProvider, reconcileService, log)
	requestController := controllers.NewRequestController(contactService, log)

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	// Request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.RegisterRoutes(r, checkoutController, webhookController, requestController, cfg.StaticDir)

	// HTTP server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Storefront backend started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Storefront backend stopped gracefully")
}
