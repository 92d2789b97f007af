package logger

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"runtime"
	"runtime/debug"
	"time"
)

// 报告里的时间戳格式（秒精度）
const reportTimeLayout = "2006-01-02 15:04:05"

// ExceptionReport 一次错误捕获的结构化报告
// 由 LogError 生成：既写入 error 日志，也返回给调用方
type ExceptionReport struct {
	// ExceptionType 错误值的运行时类型名（指针类型解引用后取名）
	ExceptionType string `json:"exception_type" yaml:"exception_type"`

	// ExceptionMessage 错误的文本形式（err.Error()）
	ExceptionMessage string `json:"exception_message" yaml:"exception_message"`

	// Filename / Lineno / Function 记录 LogError 被调用的位置
	// Go 的 error 不携带抛出位置，处理现场是最接近的可移植等价物；
	// 取不到调用帧时退化为 "<unknown>" / -1
	Filename string `json:"filename" yaml:"filename"`
	Lineno   int    `json:"lineno" yaml:"lineno"`
	Function string `json:"function" yaml:"function"`

	// Timestamp 报告生成时刻，格式 "2006-01-02 15:04:05"
	Timestamp string `json:"timestamp" yaml:"timestamp"`

	// Traceback 当前 goroutine 的完整堆栈
	Traceback string `json:"traceback" yaml:"traceback"`
}

// String 渲染为单行 key=value 形式，堆栈不在其中（单独成块输出）
func (r ExceptionReport) String() string {
	return fmt.Sprintf(
		"exception_type=%s exception_message=%q filename=%s lineno=%d function=%s timestamp=%q",
		r.ExceptionType, r.ExceptionMessage, r.Filename, r.Lineno, r.Function, r.Timestamp,
	)
}

// LogError 捕获一个错误：生成 ExceptionReport，附带堆栈写入 error 日志，并返回报告
// err 为 nil 时仍会记录并返回（类型名为 "<nil>"），不会失败
func (l *Logger) LogError(err error) ExceptionReport {
	filename, function := "<unknown>", "<unknown>"
	lineno := -1

	if pc, file, line, ok := runtime.Caller(1 + l.callerSkip); ok {
		filename = filepath.Base(file)
		lineno = line
		if f := runtime.FuncForPC(pc); f != nil {
			function = shortFuncName(f.Name())
		}
	}

	report := ExceptionReport{
		ExceptionType:    typeName(err),
		ExceptionMessage: errMessage(err),
		Filename:         filename,
		Lineno:           lineno,
		Function:         function,
		Timestamp:        time.Now().Format(reportTimeLayout),
		Traceback:        string(debug.Stack()),
	}

	l.log(l.errlog, slog.LevelError, true, report)
	return report
}

// typeName 返回错误值的运行时类型名，指针逐层解引用
func typeName(err error) string {
	if err == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// shortFuncName 去掉完整函数名里的包路径前缀
// 例如 "github.com/x/y/pkg/app.(*Server).Run" -> "(*Server).Run"
func shortFuncName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			name = name[i+1:]
			break
		}
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
