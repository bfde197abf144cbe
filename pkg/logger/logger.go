package logger

import (
    "os"
    "path/filepath"

    "go.uber.org/fx"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "gopkg.in/natefinch/lumberjack.v2"

    "github.com/fatflowers/travelpay/pkg/config"
)

const logFileName = "travelpay.log"

func New(cfg *config.Config) (*zap.SugaredLogger, error) {
    zcfg := zap.NewProductionConfig()
    zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    zcfg.EncoderConfig.TimeKey = "time"
    if cfg != nil && cfg.Log.Debug {
        zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
    } else if cfg != nil && cfg.Log.Level != "" {
        lvl, err := zapcore.ParseLevel(cfg.Log.Level)
        if err != nil {
            return nil, err
        }
        zcfg.Level = zap.NewAtomicLevelAt(lvl)
    }

    l, err := zcfg.Build()
    if err != nil {
        return nil, err
    }

    if cfg != nil && cfg.Log.Path != "" {
        if err := os.MkdirAll(cfg.Log.Path, 0o755); err != nil {
            return nil, err
        }
        fileCore := zapcore.NewCore(
            zapcore.NewJSONEncoder(zcfg.EncoderConfig),
            zapcore.AddSync(newRotatingFile(filepath.Join(cfg.Log.Path, logFileName))),
            zcfg.Level,
        )
        l = l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
            return zapcore.NewTee(c, fileCore)
        }))
    }
    return l.Sugar(), nil
}

func newRotatingFile(path string) *lumberjack.Logger {
    return &lumberjack.Logger{
        Filename:   path,
        MaxSize:    10, // MB
        MaxBackups: 7,
        MaxAge:     28, // days
        Compress:   true,
    }
}

var Module = fx.Options(
    fx.Provide(New),
)
