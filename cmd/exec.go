package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"

	"planify/config"
	"planify/internal/gateway"
	"planify/internal/gateway/razorpay"
	"planify/internal/handlers"
	"planify/internal/services"
	"planify/internal/store"
	"planify/monitoring"
	"planify/security"
	"planify/utils"

	_ "planify/migrations"
)

func Start() error {
	app := pocketbase.New()

	cfg := config.LoadConfig()

	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId("planify-server"))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rzp, err := razorpay.New(ctx, &cfg.Razorpay)
	if err != nil {
		return err
	}

	registry := gateway.NewRegistry()
	registry.Register(rzp)

	// Services
	ledger := store.New(app)
	notifier := services.NewNotificationService(ledger, services.NewPubNubPublisher(pn))
	bookingService := services.NewBookingService(ledger, registry, redisClient, notifier, services.BookingConfig{
		DefaultAdvancePercentage: cfg.DefaultAdvancePercentage,
		CommissionRate:           cfg.CommissionRate,
		Currency:                 cfg.Currency,
		OrderMapTTL:              cfg.OrderMapTTL,
	})
	reconcileService := services.NewReconcileService(ledger, registry, redisClient, notifier, services.ReconcileConfig{
		SettleLockTimeout: cfg.SettleLockTimeout,
	})

	// Handlers
	storeHandler := handlers.NewStoreHandler(app)
	bookingHandler := handlers.NewBookingHandler(app, bookingService, ledger)
	paymentHandler := handlers.NewPaymentHandler(app, reconcileService)
	vendorHandler := handlers.NewVendorHandler(app, bookingService, ledger)
	guestHandler := handlers.NewGuestHandler(app, ledger)
	adminHandler := handlers.NewAdminHandler(app, redisClient)

	limiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	if cfg.EnableMetrics {
		monitoring.StartRuntimeCollector()
		go serveMetrics(cfg.MetricsPort)
	}

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Store directory
		e.Router.GET("/api/v1/stores", storeHandler.GetStores)
		e.Router.GET("/api/v1/stores/{storeId}/services", storeHandler.GetStoreServices)

		// Booking endpoints
		e.Router.POST("/api/v1/bookings", bookingHandler.CreateBooking)
		e.Router.GET("/api/v1/bookings", bookingHandler.GetMyBookings)
		e.Router.GET("/api/v1/bookings/{bookingId}", bookingHandler.GetBooking)
		e.Router.POST("/api/v1/bookings/{bookingId}/cancel", bookingHandler.CancelBooking)
		e.Router.POST("/api/v1/bookings/{bookingId}/advance-order", bookingHandler.StartAdvancePayment).
			BindFunc(limiter.PaymentEndpointLimit(30))

		// Payment reconciliation endpoints
		e.Router.POST("/api/v1/payments/callback", paymentHandler.Callback).
			BindFunc(limiter.PaymentEndpointLimit(30))
		e.Router.POST("/api/v1/payments/webhook", paymentHandler.Webhook)

		// Vendor endpoints
		e.Router.GET("/api/v1/vendor/bookings", vendorHandler.GetVendorBookings)
		e.Router.GET("/api/v1/vendor/earnings", vendorHandler.GetVendorEarnings)
		e.Router.POST("/api/v1/vendor/bookings/{bookingId}/approve", vendorHandler.ApproveBooking)
		e.Router.POST("/api/v1/vendor/bookings/{bookingId}/reject", vendorHandler.RejectBooking)
		e.Router.POST("/api/v1/vendor/bookings/{bookingId}/start", vendorHandler.StartBooking)
		e.Router.POST("/api/v1/vendor/bookings/{bookingId}/complete", vendorHandler.CompleteBooking)

		// Guest access endpoints
		e.Router.POST("/api/v1/events/{eventId}/guest-access", guestHandler.CreateGuestAccess)
		e.Router.GET("/api/v1/events/{eventId}/guest-access", guestHandler.ListGuestAccess)
		e.Router.POST("/api/v1/events/{eventId}/guest-access/{accessId}/revoke", guestHandler.RevokeGuestAccess)
		e.Router.POST("/api/v1/events/{eventId}/guest-view", guestHandler.GuestView)

		// Admin endpoints
		e.Router.GET("/api/v1/admin/users", adminHandler.GetUsers)
		e.Router.GET("/api/v1/admin/bookings", adminHandler.GetBookings)
		e.Router.GET("/api/v1/admin/earnings", adminHandler.GetEarnings)
		e.Router.GET("/api/v1/admin/settlement-dashboard", adminHandler.GetSettlementDashboard)
		e.Router.POST("/api/v1/admin/earnings/{earningId}/mark-paid", adminHandler.MarkEarningPaid)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	if err := app.Start(); err != nil {
		return err
	}
	return nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}
