package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
)

// 堆栈信息使用固定的属性 key 传递，输出时渲染为独立的多行块
const stackKey = "stack"

// lineHandler 实现 slog.Handler，输出单行文本格式：
//
//	2006-01-02 15:04:05.000 - LEVEL    [file.go:42] message key=value
//
// 附加的堆栈信息跟在记录行之后，按原样逐行输出
type lineHandler struct {
	w          io.Writer
	level      slog.Level
	timeLayout string
	attrs      []slog.Attr
	mu         *sync.Mutex
}

func newLineHandler(w io.Writer, level slog.Level, timeLayout string) *lineHandler {
	return &lineHandler{
		w:          w,
		level:      level,
		timeLayout: timeLayout,
		mu:         &sync.Mutex{},
	}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	buf := &bytes.Buffer{}

	buf.WriteString(r.Time.Format(h.timeLayout))
	buf.WriteString(" - ")
	buf.WriteString(paddedLevelName(r.Level))
	buf.WriteString(" [")
	buf.WriteString(sourceLocation(r.PC))
	buf.WriteString("] ")
	buf.WriteString(r.Message)

	var stack string
	appendAttr := func(a slog.Attr) bool {
		if a.Key == stackKey {
			stack = a.Value.String()
			return true
		}
		fmt.Fprintf(buf, " %s=%v", a.Key, a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(appendAttr)

	buf.WriteByte('\n')

	if stack != "" {
		buf.WriteString(stack)
		if stack[len(stack)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &c
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	// 单行文本格式不分组
	return h
}

// sourceLocation 从记录的调用栈 PC 解析出 "文件名:行号"
func sourceLocation(pc uintptr) string {
	if pc == 0 {
		return "<unknown>:-1"
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return "<unknown>:-1"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
