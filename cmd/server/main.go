package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/auth"
	"github.com/MepCity/payment-dashboard/internal/cache"
	"github.com/MepCity/payment-dashboard/internal/config"
	"github.com/MepCity/payment-dashboard/internal/handler"
	"github.com/MepCity/payment-dashboard/internal/logger"
	"github.com/MepCity/payment-dashboard/internal/middleware"
	"github.com/MepCity/payment-dashboard/internal/processor"
	"github.com/MepCity/payment-dashboard/internal/service"
	"github.com/MepCity/payment-dashboard/internal/store"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger("payment-dashboard")
	if cfg.Environment == "development" {
		log = logger.NewDevelopmentLogger("payment-dashboard")
	}
	defer log.Sync()

	st, err := newStore(cfg)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer st.Close()

	redisCache := cache.New(cfg.RedisURL)

	authorizer := newAuthorizer(cfg, log)
	manager := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiresMinutes)

	paymentService := service.NewPaymentService(st, redisCache, authorizer, log)
	disputeService := service.NewDisputeService(st, log)
	dashboardService := service.NewDashboardService(st, redisCache, log)
	authService := service.NewAuthService(st, redisCache, manager, log)

	if cfg.SeedDevMerchant {
		if err := authService.SeedDevMerchant(context.Background()); err != nil {
			log.Fatal("failed to seed development merchant", zap.Error(err))
		}
	}

	router := setupRouter(routerDeps{
		cfg:       cfg,
		log:       log,
		store:     st,
		cache:     redisCache,
		manager:   manager,
		auth:      handler.NewAuthHandler(authService, log),
		payment:   handler.NewPaymentHandler(paymentService, log),
		dispute:   handler.NewDisputeHandler(disputeService, log),
		dashboard: handler.NewDashboardHandler(dashboardService, log),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return store.NewPostgresStore(cfg.DatabaseURL)
	default:
		return store.NewBoltStore(cfg.BoltPath)
	}
}

func newAuthorizer(cfg *config.Config, log *zap.Logger) processor.Authorizer {
	if cfg.Authorizer == "stripe" && cfg.StripeKey != "" {
		return processor.NewStripe(cfg.StripeKey, log)
	}
	return processor.NewSimulated(log)
}

type routerDeps struct {
	cfg       *config.Config
	log       *zap.Logger
	store     store.Store
	cache     *cache.Cache
	manager   *auth.Manager
	auth      *handler.AuthHandler
	payment   *handler.PaymentHandler
	dispute   *handler.DisputeHandler
	dashboard *handler.DashboardHandler
}

func setupRouter(deps routerDeps) *gin.Engine {
	if deps.cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.log))
	router.Use(middleware.Recovery(deps.log))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.POST("/auth/login", deps.auth.Login)

	authed := v1.Group("")
	authed.Use(middleware.RequireAuth(deps.manager, deps.store, deps.cache))
	{
		authed.POST("/auth/logout", deps.auth.Logout)
		authed.GET("/auth/profile", deps.auth.Profile)

		payments := authed.Group("/payments")
		{
			payments.POST("", deps.payment.CreatePayment)
			payments.GET("", deps.payment.ListPayments)
			payments.GET("/:id", deps.payment.GetPayment)
			payments.GET("/transaction/:transactionId", deps.payment.GetPaymentByTransaction)
			payments.GET("/merchant/:merchantId", deps.payment.ListPayments)
			payments.GET("/customer/:customerId", deps.payment.ListByCustomer)
			payments.GET("/status/:status", deps.payment.ListByStatus)
			payments.PUT("/:id/status", deps.payment.UpdateStatus)
			payments.POST("/:id/refund", deps.payment.CreateRefund)
			payments.DELETE("/:id", deps.payment.DeletePayment)
			payments.POST("/:id/sync", deps.payment.SyncPayment)
		}

		disputes := authed.Group("/disputes")
		{
			disputes.POST("", deps.dispute.OpenDispute)
			disputes.GET("", deps.dispute.ListDisputes)
			disputes.GET("/stats", deps.dispute.Stats)
			disputes.GET("/:id", deps.dispute.GetDispute)
			disputes.POST("/:id/respond", deps.dispute.Respond)
		}

		authed.GET("/dashboard/stats", deps.dashboard.Stats)
		authed.GET("/customers", deps.dashboard.ListCustomers)
		authed.GET("/customers/:id", deps.dashboard.GetCustomer)
		authed.GET("/refunds", deps.payment.ListRefunds)
	}

	return router
}
