package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cartify/internal/config"
	"cartify/internal/domain/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
		)
	}

	//接続前にDSNだけ検証（パスワードはログに出さない）
	pcfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	log.Info().Str("host", pcfg.Host).Uint16("port", pcfg.Port).Str("db", pcfg.Database).Msg("connecting postgres")

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gdb, nil
}

// テーブル作成（serpapi_idのユニークindexもここで作られる）
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.CartItem{},
	)
}

const slowQueryThreshold = 500 * time.Millisecond

// gormのログをzerologに流す。SQLエラーはError、遅いSQLはWarn、それ以外はDebug
func newGormLogger(log zerolog.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if log.GetLevel() <= zerolog.DebugLevel {
		level = gormlogger.Info
	}
	return &gormZerolog{
		log:   log.With().Str("component", "gorm").Logger(),
		level: level,
		slow:  slowQueryThreshold,
	}
}

type gormZerolog struct {
	log   zerolog.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func (g *gormZerolog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormZerolog) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info().Msgf(msg, args...)
	}
}

func (g *gormZerolog) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn().Msgf(msg, args...)
	}
}

func (g *gormZerolog) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error().Msgf(msg, args...)
	}
}

func (g *gormZerolog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.log.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql error")
	case g.slow > 0 && elapsed > g.slow && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn().Dur("elapsed", elapsed).Dur("threshold", g.slow).Int64("rows", rows).Str("sql", sql).Msg("slow sql")
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql")
	}
}
