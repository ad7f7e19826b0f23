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
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"shop-service/internal/config"
	controllers "shop-service/internal/controllers/http"
	"shop-service/internal/infra/chain"
	"shop-service/internal/infra/db"
	"shop-service/internal/infra/rabbitmq"
	"shop-service/internal/infra/rates"
	"shop-service/internal/infra/telegram"
	"shop-service/internal/infra/wallet"
	"shop-service/internal/logging"
	"shop-service/internal/repository/gormrepo"
	"shop-service/internal/services"
)

func main() {
	logger := logging.Setup("shop-service", os.Getenv("SHOP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config: load", "error", err)
		os.Exit(1)
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		logger.Error("db: connect", "error", err)
		os.Exit(1)
	}

	orderRepo := gormrepo.NewOrderRepository(gdb)
	productRepo := gormrepo.NewProductRepository(gdb)
	cartRepo := gormrepo.NewCartRepository(gdb)

	rateClient := rates.NewClient(cfg.RatePrimaryURL, cfg.RateFallbackURL, cfg.HTTPTimeout, logger)
	walletClient := wallet.NewClient(cfg.WalletURL, cfg.BitcoinNetwork, cfg.HTTPTimeout, logger)
	chainClient := chain.NewClient(cfg.ChainAPIURL, cfg.HTTPTimeout, logger)
	tgClient := telegram.NewClient(cfg.BotToken, cfg.AdminChatID, cfg.HTTPTimeout, logger)

	var publisher rabbitmq.PublisherInterface
	if cfg.AMQPURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, "shop.orders", logger)
		if err != nil {
			logger.Error("rabbitmq: connect", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		publisher = pub
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	catalogService := services.NewCatalogService(productRepo, logger)
	cartService := services.NewCartService(cartRepo, productRepo, logger)
	orderService := services.NewOrderService(orderRepo, cartRepo, rateClient, walletClient, tgClient, publisher, cfg.AdminChatID, logger)
	orderService.SetRedisClient(redisClient)
	paymentService := services.NewPaymentService(orderRepo, chainClient, publisher, cfg.PaymentTolerance, logger)
	sweeper := services.NewPaymentSweeper(orderRepo, paymentService, cfg.SweepInterval, logger)

	handler := controllers.NewHandler(catalogService, cartService, orderService, paymentService, tgClient, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting shop service", "addr", cfg.ListenAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := sweeper.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
