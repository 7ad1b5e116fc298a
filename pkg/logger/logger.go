package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*logrus.Entry
}

var defaultLogger *Logger

type Config struct {
	Level  string
	Format string
	Output string
	File   FileConfig
	Fields map[string]interface{}
}

type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

func Init(cfg Config) error {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "@timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	if cfg.File.Enabled {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSize,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAge,
			Compress:   cfg.File.Compress,
		})
	} else {
		log.SetOutput(os.Stdout)
	}

	fields := logrus.Fields{
		"app":     "sabanas-server",
		"version": "1.0.0",
		"pid":     os.Getpid(),
	}
	for k, v := range cfg.Fields {
		fields[k] = v
	}

	defaultLogger = &Logger{Entry: log.WithFields(fields)}
	return nil
}

// WithContext extracts correlation/job/file identifiers carried on ctx, if any.
func WithContext(ctx context.Context) *Logger {
	if defaultLogger == nil {
		panic("logger not initialized")
	}

	fields := logrus.Fields{}
	if v := ctx.Value(ctxKeyCorrelationID); v != nil {
		fields["correlation_id"] = v
	}
	if v := ctx.Value(ctxKeyFileID); v != nil {
		fields["file_id"] = v
	}
	if v := ctx.Value(ctxKeyJobID); v != nil {
		fields["job_id"] = v
	}

	return defaultLogger.WithFields(fields)
}

type ctxKey int

const (
	ctxKeyCorrelationID ctxKey = iota
	ctxKeyFileID
	ctxKeyJobID
)

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

func ContextWithFileID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKeyFileID, id)
}

func ContextWithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyJobID, id)
}

func (l *Logger) WithFields(fields logrus.Fields) *Logger {
	return &Logger{Entry: l.Entry.WithFields(fields)}
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{Entry: l.Entry.WithFields(logrus.Fields{
		"error":      err.Error(),
		"error_type": fmt.Sprintf("%T", err),
	})}
}

// Convenience functions delegating to the default instance.
func Debug(args ...interface{}) { defaultLogger.Debug(args...) }
func Info(args ...interface{})  { defaultLogger.Info(args...) }
func Warn(args ...interface{})  { defaultLogger.Warn(args...) }
func Error(args ...interface{}) { defaultLogger.Error(args...) }
func Fatal(args ...interface{}) { defaultLogger.Fatal(args...) }

func WithField(key string, value interface{}) *Logger {
	return defaultLogger.WithField(key, value)
}

func WithError(err error) *Logger {
	return defaultLogger.WithError(err)
}
