package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Abhi39054/goessential/pkg/rotate"
)

// Logger 管理三路相互独立的日志流，每路各自按时间轮转：
//
//  1. stdin  —— 输入/摄入类事件（<name>_stdin.log），始终以 INFO 级别记录
//  2. stdout —— 常规 debug/info/warning 消息（<name>_stdout.log）
//  3. error  —— error/critical 消息与异常（<name>_error.log）
//
// 三路日志不经过全局注册表，句柄由 Logger 实例独占持有，
// 重复构造同名 Logger 不会产生重复输出。
//
// 使用完毕后应调用 Close() 释放文件句柄，或通过 Scoped 自动管理：
//
//	log, err := logger.New(logger.Config{Name: "my_app"})
//	if err != nil { ... }
//	defer log.Close()
//	log.Info("Application started.")
//	log.Error("Something went wrong!")
type Logger struct {
	config   Config
	minLevel slog.Level

	stdin  *sink
	stdout *sink
	errlog *sink

	// 报告调用位置时额外跳过的栈帧数，供再包装一层的调用方使用
	callerSkip int
}

// sink 一路日志：一个轮转文件句柄，外加可选的控制台镜像
type sink struct {
	path     string
	handlers []slog.Handler
	closers  []io.Closer
}

func newSink(path string, cfg Config, console io.Writer) (*sink, error) {
	backups := cfg.BackupCount
	if backups < 0 {
		backups = 0 // rotate 里 0 表示全部保留
	}

	writer, closer, err := rotate.New(rotate.Config{
		Filename:    path,
		When:        cfg.When,
		Interval:    cfg.Interval,
		BackupCount: backups,
	})
	if err != nil {
		return nil, err
	}

	level := parseLevel(cfg.Level)
	s := &sink{
		path:     path,
		handlers: []slog.Handler{newLineHandler(writer, level, cfg.TimeLayout)},
		closers:  []io.Closer{closer},
	}

	if console != nil {
		s.handlers = append(s.handlers, newLineHandler(console, level, cfg.TimeLayout))
	}

	return s, nil
}

// New 根据配置创建一个新的 Logger
// 日志目录不存在时自动创建（包括上级目录），创建失败时返回错误
// 三个日志文件在各自第一次被写入时才真正创建
func New(cfg Config) (*Logger, error) {
	cfg = normalize(cfg)

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log directory: %w", err)
	}
	cfg.Dir = dir

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		config:   cfg,
		minLevel: parseLevel(cfg.Level),
	}

	// stdin 日志不镜像到控制台
	if l.stdin, err = newSink(filepath.Join(cfg.Dir, cfg.Name+"_stdin.log"), cfg, nil); err != nil {
		return nil, err
	}

	var stdoutMirror, stderrMirror io.Writer
	if cfg.EnableConsole {
		stdoutMirror = os.Stdout
		stderrMirror = os.Stderr
	}

	if l.stdout, err = newSink(filepath.Join(cfg.Dir, cfg.Name+"_stdout.log"), cfg, stdoutMirror); err != nil {
		return nil, err
	}

	if l.errlog, err = newSink(filepath.Join(cfg.Dir, cfg.Name+"_error.log"), cfg, stderrMirror); err != nil {
		return nil, err
	}

	return l, nil
}

// MustNew 根据配置创建一个新的 Logger（失败时 panic）
func MustNew(cfg Config) *Logger {
	l, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	return l
}

// Scoped 创建 Logger 并在 fn 返回后关闭它
// 无论 fn 正常返回还是 panic，Close 都保证执行
func Scoped(cfg Config, fn func(*Logger) error) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	return fn(l)
}

// StdinPath 返回 stdin 日志文件路径
func (l *Logger) StdinPath() string { return l.stdin.path }

// StdoutPath 返回 stdout 日志文件路径
func (l *Logger) StdoutPath() string { return l.stdout.path }

// ErrorPath 返回 error 日志文件路径
func (l *Logger) ErrorPath() string { return l.errlog.path }

// WithCallerSkip 返回一个共享全部日志流的 Logger 副本，
// 报告调用位置时额外跳过 n 层栈帧
// 供在 Logger 之上再包装一层的代码使用，使日志中的 file:line 指向真正的调用方
func (l *Logger) WithCallerSkip(n int) *Logger {
	c := *l
	c.callerSkip += n
	return &c
}

// Debug 记录 debug 消息到 stdout 日志
func (l *Logger) Debug(msg any, args ...any) {
	l.log(l.stdout, slog.LevelDebug, false, msg, args...)
}

// Info 记录 info 消息到 stdout 日志
func (l *Logger) Info(msg any, args ...any) {
	l.log(l.stdout, slog.LevelInfo, false, msg, args...)
}

// Warning 记录 warning 消息到 stdout 日志
func (l *Logger) Warning(msg any, args ...any) {
	l.log(l.stdout, slog.LevelWarn, false, msg, args...)
}

// Error 记录 error 消息到 error 日志
func (l *Logger) Error(msg any, args ...any) {
	l.log(l.errlog, slog.LevelError, false, msg, args...)
}

// Critical 记录 critical 消息到 error 日志
func (l *Logger) Critical(msg any, args ...any) {
	l.log(l.errlog, LevelCritical, false, msg, args...)
}

// Ingress 记录输入/摄入类事件到 stdin 日志，级别固定为 INFO
func (l *Logger) Ingress(msg any, args ...any) {
	l.log(l.stdin, slog.LevelInfo, false, msg, args...)
}

// Exception 记录 error 消息到 error 日志，并附加当前 goroutine 的堆栈
func (l *Logger) Exception(msg any, args ...any) {
	l.log(l.errlog, slog.LevelError, true, msg, args...)
}

// Close 尽力刷新并关闭所有日志流上的句柄
// 单个句柄关闭失败不会中断其余句柄的关闭，也不会向外传播
// 重复调用是安全的；关闭后的日志调用会被静默丢弃
func (l *Logger) Close() {
	for _, s := range []*sink{l.stdin, l.stdout, l.errlog} {
		for _, c := range s.closers {
			_ = c.Close()
		}
		s.handlers = nil
		s.closers = nil
	}
}

// log 把一条记录分发到指定日志流的全部句柄
// 调用链固定为 用户代码 -> 导出方法 -> log，栈帧跳过数以此为准
func (l *Logger) log(s *sink, level slog.Level, withStack bool, msg any, args ...any) {
	if len(s.handlers) == 0 || level < l.minLevel {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3+l.callerSkip, pcs[:])

	message, attrs := formatMessage(msg, args)
	r := slog.NewRecord(time.Now(), level, message, pcs[0])
	if len(attrs) > 0 {
		r.Add(attrs...)
	}
	if withStack {
		r.AddAttrs(slog.String(stackKey, string(debug.Stack())))
	}

	ctx := context.Background()
	for _, h := range s.handlers {
		if h.Enabled(ctx, level) {
			_ = h.Handle(ctx, r)
		}
	}
}

// formatMessage 把消息和附加参数归一成记录文本
// 字符串消息含格式化动词且带参数时按 fmt.Sprintf 插值，
// 否则参数按 slog 惯例作为 key=value 对输出；非字符串消息用 fmt 转为文本
func formatMessage(msg any, args []any) (string, []any) {
	s, ok := msg.(string)
	if !ok {
		return fmt.Sprint(msg), args
	}
	if len(args) > 0 && strings.Contains(s, "%") {
		return fmt.Sprintf(s, args...), nil
	}
	return s, args
}
