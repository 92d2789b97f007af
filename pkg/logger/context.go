package logger

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

type loggerKey struct{}

var (
	fallbackOnce sync.Once
	fallback     *Logger
)

// consoleFallback 仅输出到控制台的兜底 Logger（不落盘）
// stdin/stdout 流镜像到标准输出，error 流镜像到标准错误
func consoleFallback() *Logger {
	fallbackOnce.Do(func() {
		fallback = &Logger{
			minLevel: slog.LevelDebug,
			stdin: &sink{
				handlers: []slog.Handler{newLineHandler(os.Stdout, slog.LevelDebug, defaultTimeLayout)},
			},
			stdout: &sink{
				handlers: []slog.Handler{newLineHandler(os.Stdout, slog.LevelDebug, defaultTimeLayout)},
			},
			errlog: &sink{
				handlers: []slog.Handler{newLineHandler(os.Stderr, slog.LevelDebug, defaultTimeLayout)},
			},
		}
	})
	return fallback
}

// FromContext returns the *Logger from context, or a console-only fallback if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return l
	}
	return consoleFallback()
}

// WithContext stores the *Logger in context.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}
