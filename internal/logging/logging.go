// Package logging builds the zap loggers used by the CLI and daemon.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where logs go and how verbose they are.
type Config struct {
	// LogFile enables a rotated JSON log file in addition to stderr.
	LogFile    string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Debug      bool
	// Quiet drops console output below warnings.
	Quiet bool
}

// New builds a logger that writes human-readable lines to stderr and, when
// LogFile is set, JSON lines to a rotated file.
func New(cfg Config) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	if cfg.Debug {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}
	consoleLevel := level
	if cfg.Quiet {
		consoleLevel = zapcore.WarnLevel
	}

	consoleEnc := encCfg
	consoleEnc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(os.Stderr), consoleLevel),
	}

	if cfg.LogFile != "" {
		rot := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    orDefault(cfg.MaxSizeMB, 20),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 14),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rot), level))
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Debug {
		opts = append(opts, zap.AddCaller(), zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// WithComponent tags a logger with the subsystem it belongs to.
func WithComponent(l *zap.Logger, name string) *zap.Logger {
	return l.With(zap.String("component", name))
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
