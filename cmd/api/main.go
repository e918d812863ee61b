package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cartify/internal/config"
	"cartify/internal/handler"
	"cartify/internal/infra/cache"
	"cartify/internal/infra/db"
	"cartify/internal/infra/publisher"
	infraRepo "cartify/internal/infra/repository"
	"cartify/internal/logger"
	repo "cartify/internal/repository"
	"cartify/internal/server"
	"cartify/internal/usecase"

	"github.com/redis/go-redis/v9"
)

type orderPublisher interface {
	usecase.OrderPublisher
	Close() error
}

func main() {
	//設定
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("dev", "info")
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.GoEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("get sql.DB")
	}
	defer sqlDB.Close()

	//カートセッション（Redis）
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	sessions := cache.NewRedisCartStore(rdb, cfg.CartTTL)

	//注文通知
	var pub orderPublisher = publisher.NopOrderPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = publisher.NewKafkaOrderPublisher(cfg.OrderPlacedTopic, cfg.KafkaBrokers...)
	}
	defer pub.Close()

	//Repository（GORM実装）生成
	cartRows := infraRepo.NewCartGormRepository(gormDB)
	readTx := infraRepo.NewTxManagerGorm(gormDB)

	var checkoutTx repo.TransactionManager = readTx
	if cfg.CheckoutTxMode == config.TxModeLenient {
		checkoutTx = infraRepo.NewAutoCommitManagerGorm(gormDB)
	}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(sessions, cartRows, log)
	checkoutUC := usecase.NewCheckoutUsecase(checkoutTx, cartRows, pub, usecase.NewCheckoutTracker(), usecase.CheckoutOptions{
		Timeout:            cfg.CheckoutTimeout,
		PreSubmitDelay:     cfg.CheckoutPreSubmitDelay,
		ResolveConcurrency: cfg.CheckoutResolveConcurrency,
	}, log)
	orderUC := usecase.NewOrderUsecase(readTx)

	//Handler生成
	handlers := server.Handlers{
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC, sessions),
		Order:    handler.NewOrderHandler(orderUC),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": handler.PingFunc(sqlDB.PingContext),
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		}),
	}

	log.Info().
		Str("tx_mode", string(cfg.CheckoutTxMode)).
		Dur("checkout_timeout", cfg.CheckoutTimeout).
		Int("resolve_concurrency", cfg.CheckoutResolveConcurrency).
		Bool("kafka", len(cfg.KafkaBrokers) > 0).
		Msg("starting cartify")

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	e := server.New(cfg, log, handlers)
	if err := server.Start(ctx, e, addr, log); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
