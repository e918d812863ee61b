package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New はアプリ共通のロガーを作る。
// devは見やすいコンソール出力、それ以外はJSON。
func New(goEnv string, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if goEnv == "dev" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lv, err := zerolog.ParseLevel(level)
	if err != nil || lv == zerolog.NoLevel {
		lv = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lv).With().Timestamp().Str("service", "cartify").Logger()
}
