package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 注文確定の書き込みモード
type TxMode string

const (
	// 注文ヘッダ〜明細を1トランザクションで書く
	TxModeAtomic TxMode = "atomic"
	// 1回ずつ自動commit。失敗しても書いた行は残る
	TxModeLenient TxMode = "lenient"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば最優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string
	DBMaxOpenConns   int

	RedisAddr     string        // カートセッション
	RedisPassword string        //
	CartTTL       time.Duration // カートセッションの保持期間

	KafkaBrokers     []string // 空なら通知しない
	OrderPlacedTopic string

	JWTSecret string // JWT署名シークレット

	GoEnv    string // dev/prod
	LogLevel string

	CheckoutTxMode             TxMode
	CheckoutTimeout            time.Duration // 1回の注文確定全体のタイムアウト
	CheckoutPreSubmitDelay     time.Duration // 書き込み前の待ち（デモ用、通常0）
	CheckoutResolveConcurrency int           // 商品解決の並列数（1=順番）
	CheckoutRateLimit          float64       // /checkoutの1秒あたり許可数（ユーザーごと）
}

// Loadは環境変数（.envがあれば先に読む）
func Load() (Config, error) {
	// .envは無くてもよい
	_ = godotenv.Load()

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenv("POSTGRES_DB", "cartify"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		OrderPlacedTopic: getenv("KAFKA_ORDER_PLACED_TOPIC", "order-placed"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		CheckoutTxMode: TxMode(strings.ToLower(getenv("CHECKOUT_TX_MODE", string(TxModeAtomic)))),
	}

	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}

	var err error
	if cfg.PostgresPort, err = atoiOr("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxOpenConns, err = atoiOr("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutResolveConcurrency, err = atoiOr("CHECKOUT_RESOLVE_CONCURRENCY", 1); err != nil {
		return Config{}, err
	}
	if cfg.CartTTL, err = durationOr("CART_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutTimeout, err = durationOr("CHECKOUT_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutPreSubmitDelay, err = durationOr("CHECKOUT_PRESUBMIT_DELAY", 0); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutRateLimit, err = floatOr("CHECKOUT_RATE_LIMIT", 1); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 必須チェック
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DatabaseURL == "" && c.PostgresPassword == "" {
		return fmt.Errorf("DATABASE_URL or POSTGRES_PASSWORD is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.CheckoutTxMode {
	case TxModeAtomic, TxModeLenient:
	default:
		return fmt.Errorf("CHECKOUT_TX_MODE must be atomic or lenient: %q", c.CheckoutTxMode)
	}
	if c.CheckoutTimeout <= 0 {
		return fmt.Errorf("CHECKOUT_TIMEOUT must be positive")
	}
	if c.CheckoutPreSubmitDelay < 0 {
		return fmt.Errorf("CHECKOUT_PRESUBMIT_DELAY must not be negative")
	}
	if c.CheckoutResolveConcurrency < 1 {
		return fmt.Errorf("CHECKOUT_RESOLVE_CONCURRENCY must be >= 1")
	}
	// 1つのTxは並列に使えない
	if c.CheckoutTxMode == TxModeAtomic && c.CheckoutResolveConcurrency > 1 {
		return fmt.Errorf("CHECKOUT_RESOLVE_CONCURRENCY > 1 requires CHECKOUT_TX_MODE=lenient")
	}
	return nil
}

func (c Config) IsDev() bool {
	return c.GoEnv == "dev"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func floatOr(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
