package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// LevelCritical 在 slog 的四个标准级别之上扩展出 CRITICAL
const LevelCritical = slog.LevelError + 4

// parseLevel 解析日志级别（大小写不敏感）
// 无法识别的级别回退到 DEBUG
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	default:
		return slog.LevelDebug
	}
}

// levelName 返回日志级别的显示名称
func levelName(level slog.Level) string {
	switch {
	case level >= LevelCritical:
		return "CRITICAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// paddedLevelName 返回固定宽度的级别名称，保证各行对齐
func paddedLevelName(level slog.Level) string {
	return fmt.Sprintf("%-8s", levelName(level))
}
