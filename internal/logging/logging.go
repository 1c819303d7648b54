// Package logging builds the application logger. The terminal belongs to the
// UI, so records go to a size-rotated JSON file.
package logging

import (
	"fmt"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"geomeasure/internal/config"
)

// New returns a logger for cfg. With no file configured it returns a no-op
// logger.
func New(cfg config.Log) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		level = l
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), w, level)
	return zap.New(core, zap.AddCaller()), nil
}
