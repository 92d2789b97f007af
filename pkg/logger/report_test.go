package logger

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type timeoutError struct {
	op string
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("operation %s timed out", e.op)
}

func TestExceptionAttachesStack(t *testing.T) {
	tempDir := t.TempDir()

	log, err := New(Config{Dir: tempDir, Name: "test_app"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Exception("lookup failed", "key", "user:42")
	log.Close()

	errlog := readLog(t, log.ErrorPath())
	if !strings.Contains(errlog, "lookup failed") {
		t.Error("exception message not found in error log")
	}
	if !strings.Contains(errlog, "ERROR") {
		t.Error("exception entries should be tagged ERROR")
	}
	if !strings.Contains(errlog, "goroutine ") {
		t.Error("stack trace block missing from error log")
	}
	if !strings.Contains(errlog, "TestExceptionAttachesStack") {
		t.Error("stack trace should contain the raising function")
	}

	if strings.Contains(readLog(t, log.StdoutPath()), "lookup failed") {
		t.Error("exception leaked into stdout log")
	}
}

func TestLogErrorReport(t *testing.T) {
	tempDir := t.TempDir()

	log, err := New(Config{Dir: tempDir, Name: "test_app"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	source := &timeoutError{op: "dial"}
	report := log.LogError(source)
	log.Close()

	if report.ExceptionType != "timeoutError" {
		t.Errorf("ExceptionType = %q, want timeoutError", report.ExceptionType)
	}
	if !strings.Contains(report.ExceptionMessage, source.Error()) {
		t.Errorf("ExceptionMessage = %q", report.ExceptionMessage)
	}
	if report.Filename != "report_test.go" {
		t.Errorf("Filename = %q, want report_test.go", report.Filename)
	}
	if report.Lineno <= 0 {
		t.Errorf("Lineno = %d, want a real line", report.Lineno)
	}
	if !strings.Contains(report.Function, "TestLogErrorReport") {
		t.Errorf("Function = %q", report.Function)
	}
	if report.Timestamp == "" {
		t.Error("Timestamp is empty")
	}
	if !strings.Contains(report.Traceback, "goroutine ") {
		t.Error("Traceback missing")
	}

	// 报告同时落入 error 日志，包含同样的类型名
	errlog := readLog(t, log.ErrorPath())
	if !strings.Contains(errlog, "exception_type=timeoutError") {
		t.Errorf("stringified report missing from error log:\n%s", errlog)
	}
	if !strings.Contains(errlog, "operation dial timed out") {
		t.Error("exception message missing from error log")
	}
	if !strings.Contains(errlog, "goroutine ") {
		t.Error("stack block missing from error log")
	}
}

func TestLogErrorPlainError(t *testing.T) {
	tempDir := t.TempDir()

	log, err := New(Config{Dir: tempDir, Name: "test_app"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer log.Close()

	report := log.LogError(errors.New("plain failure"))
	if report.ExceptionType != "errorString" {
		t.Errorf("ExceptionType = %q, want errorString", report.ExceptionType)
	}
	if report.ExceptionMessage != "plain failure" {
		t.Errorf("ExceptionMessage = %q", report.ExceptionMessage)
	}
}

func TestLogErrorNil(t *testing.T) {
	tempDir := t.TempDir()

	log, err := New(Config{Dir: tempDir, Name: "test_app"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report := log.LogError(nil)
	log.Close()

	if report.ExceptionType != "<nil>" {
		t.Errorf("ExceptionType = %q, want <nil>", report.ExceptionType)
	}
	if report.ExceptionMessage != "" {
		t.Errorf("ExceptionMessage = %q, want empty", report.ExceptionMessage)
	}
	if !strings.Contains(readLog(t, log.ErrorPath()), "exception_type=<nil>") {
		t.Error("nil error should still be recorded")
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "<nil>"},
		{errors.New("x"), "errorString"},
		{&timeoutError{op: "x"}, "timeoutError"},
		{fmt.Errorf("wrapped: %w", errors.New("inner")), "wrapError"},
	}

	for _, tt := range tests {
		if got := typeName(tt.err); got != tt.want {
			t.Errorf("typeName(%T) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestShortFuncName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/x/y/pkg/app.(*Server).Run", "(*Server).Run"},
		{"main.main", "main"},
		{"run", "run"},
	}

	for _, tt := range tests {
		if got := shortFuncName(tt.in); got != tt.want {
			t.Errorf("shortFuncName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
