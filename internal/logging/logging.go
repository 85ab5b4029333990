package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production uses JSON output; development
// uses the console encoder with colored levels.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// GormWriter adapts a zap logger to the Printf writer gorm's logger expects.
type GormWriter struct {
	sugar *zap.SugaredLogger
}

func NewGormWriter(l *zap.Logger) GormWriter {
	return GormWriter{sugar: l.Named("gorm").WithOptions(zap.AddCallerSkip(2)).Sugar()}
}

func (w GormWriter) Printf(format string, args ...interface{}) {
	w.sugar.Infof(format, args...)
}
