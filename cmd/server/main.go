package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/config"
	"github.com/d60-Lab/restaurant-pos/internal/api"
	"github.com/d60-Lab/restaurant-pos/internal/api/handler"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/internal/webhook"
	"github.com/d60-Lab/restaurant-pos/internal/ws"
	"github.com/d60-Lab/restaurant-pos/pkg/database"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("open database", zap.Error(err))
		os.Exit(1)
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.Error("migrate", zap.Error(err))
		os.Exit(1)
	}

	cache := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// repositories
	orderRepo := repository.NewOrderRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	tableRepo := repository.NewTableRepository(db)
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db, cache, cfg.Redis.CacheTTL)

	// services
	hub := ws.NewHub()
	discounts := service.NewDiscountEngine(couponRepo)
	pricing := service.NewPricingCalculator(discounts, settingsRepo, cfg.Loyalty.PointValue)
	orderSvc := service.NewOrderService(db, orderRepo, menuRepo, couponRepo, loyaltyRepo, paymentRepo, pricing, hub)
	verifier := webhook.NewHMACVerifier(cfg.Payment.WebhookSecret)
	paymentSvc := service.NewPaymentService(db, orderRepo, paymentRepo, verifier, hub)
	couponSvc := service.NewCouponService(couponRepo, discounts)
	loyaltySvc := service.NewLoyaltyService(loyaltyRepo, cfg.Loyalty.PointValue)
	catalogSvc := service.NewCatalogService(menuRepo, tableRepo, settingsRepo)
	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	h := handler.New(authSvc, orderSvc, paymentSvc, couponSvc, loyaltySvc, catalogSvc, hub)
	router := api.NewRouter(h, authSvc)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	hub.Close()
	_ = cache.Close()
}
