package rotate

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewIsLazy(t *testing.T) {
	tempDir := t.TempDir()
	filename := filepath.Join(tempDir, "test.log")

	writer, closer, err := New(Config{
		Filename: filename,
	})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer closer.Close()

	// 第一次写入之前不应创建文件
	if _, err := os.Stat(filename); !os.IsNotExist(err) {
		t.Error("Log file should not exist before first write")
	}

	if _, err := writer.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		t.Error("Log file was not created on first write")
	}
}

func TestWrite(t *testing.T) {
	tempDir := t.TempDir()
	filename := filepath.Join(tempDir, "test.log")

	writer, closer, err := New(Config{
		Filename: filename,
	})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer closer.Close()

	message := "test log message\n"
	n, err := writer.Write([]byte(message))
	if err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if n != len(message) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(message), n)
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if string(content) != message {
		t.Errorf("Expected content %q, got %q", message, string(content))
	}
}

func TestMissingFilename(t *testing.T) {
	if _, _, err := New(Config{}); err == nil {
		t.Error("Expected error for empty filename")
	}
}

func TestInvalidTrigger(t *testing.T) {
	if _, _, err := New(Config{Filename: "a.log", When: "weekly"}); err == nil {
		t.Error("Expected error for invalid trigger")
	}
}

func TestParseWhenSpellings(t *testing.T) {
	tests := []struct {
		in   string
		want trigger
	}{
		{"", triggerMidnight},
		{"midnight", triggerMidnight},
		{"D", triggerMidnight},
		{"day", triggerMidnight},
		{"hour", triggerHour},
		{"H", triggerHour},
		{"Minute", triggerMinute},
		{"m", triggerMinute},
	}

	for _, tt := range tests {
		got, err := parseWhen(tt.in)
		if err != nil {
			t.Errorf("parseWhen(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseWhen(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeFilename(t *testing.T) {
	if got := normalizeFilename("logs/app"); got != "logs/app.log" {
		t.Errorf("Expected logs/app.log, got %s", got)
	}
	if got := normalizeFilename("logs/app.txt"); got != "logs/app.txt" {
		t.Errorf("Expected logs/app.txt, got %s", got)
	}
}

func TestRotateOnPeriodChange(t *testing.T) {
	tempDir := t.TempDir()
	filename := filepath.Join(tempDir, "test.log")

	writer, closer, err := New(Config{
		Filename: filename,
		When:     "minute",
	})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer closer.Close()

	if _, err := writer.Write([]byte("first period\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	// 把周期起止拨到过去，模拟跨周期
	past := time.Now().Add(-2 * time.Minute)
	w := writer.(*Writer)
	w.mu.Lock()
	w.periodStart = past
	w.periodEnd = time.Now().Add(-time.Minute)
	w.mu.Unlock()

	if _, err := writer.Write([]byte("second period\n")); err != nil {
		t.Fatalf("Failed to write after rotation: %v", err)
	}

	// rotate 之后 periodStart 已更新，直接用轮转前的起点推算备份名
	content, err := os.ReadFile(w.backupName(past))
	if err != nil {
		t.Fatalf("Backup file not created: %v", err)
	}
	if string(content) != "first period\n" {
		t.Errorf("Backup content = %q", string(content))
	}

	current, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read current file: %v", err)
	}
	if string(current) != "second period\n" {
		t.Errorf("Current content = %q", string(current))
	}
}

func TestRotateStaleFileOnFirstWrite(t *testing.T) {
	tempDir := t.TempDir()
	filename := filepath.Join(tempDir, "test.log")

	// 先留下一个"昨天"的日志文件
	if err := os.WriteFile(filename, []byte("yesterday\n"), 0o666); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}
	yesterday := time.Now().AddDate(0, 0, -1)
	if err := os.Chtimes(filename, yesterday, yesterday); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}

	writer, closer, err := New(Config{
		Filename: filename,
	})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer closer.Close()

	if _, err := writer.Write([]byte("today\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	w := writer.(*Writer)
	start := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.Local)
	backup, err := os.ReadFile(w.backupName(start))
	if err != nil {
		t.Fatalf("Stale file was not rotated: %v", err)
	}
	if string(backup) != "yesterday\n" {
		t.Errorf("Backup content = %q", string(backup))
	}

	current, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read current file: %v", err)
	}
	if string(current) != "today\n" {
		t.Errorf("Current content = %q", string(current))
	}
}

func TestCleanupKeepsBackupCount(t *testing.T) {
	tempDir := t.TempDir()
	filename := filepath.Join(tempDir, "app.log")

	writer, closer, err := New(Config{
		Filename:    filename,
		BackupCount: 2,
	})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer closer.Close()

	// 伪造 4 个历史备份
	stamps := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}
	for _, s := range stamps {
		path := filepath.Join(tempDir, fmt.Sprintf("app-%s.log", s))
		if err := os.WriteFile(path, []byte("old\n"), 0o666); err != nil {
			t.Fatalf("Failed to seed backup: %v", err)
		}
	}
	// 不匹配的文件不应被清理
	other := filepath.Join(tempDir, "other-2024-01-01.log")
	if err := os.WriteFile(other, []byte("keep\n"), 0o666); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	w := writer.(*Writer)
	w.cleanup()

	for _, s := range stamps[:2] {
		path := filepath.Join(tempDir, fmt.Sprintf("app-%s.log", s))
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", path)
		}
	}
	for _, s := range stamps[2:] {
		path := filepath.Join(tempDir, fmt.Sprintf("app-%s.log", s))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to be kept: %v", path, err)
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("Unrelated file should not be cleaned up: %v", err)
	}
}

func TestConcurrentWrite(t *testing.T) {
	tempDir := t.TempDir()
	filename := filepath.Join(tempDir, "test.log")

	writer, closer, err := New(Config{
		Filename: filename,
	})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer closer.Close()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			message := fmt.Sprintf("test message %d\n", n)
			for j := 0; j < 100; j++ {
				writer.Write([]byte(message))
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	info, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("Failed to stat log file: %v", err)
	}
	expected := int64(0)
	for i := 0; i < 10; i++ {
		expected += int64(len(fmt.Sprintf("test message %d\n", i))) * 100
	}
	if info.Size() != expected {
		t.Errorf("Expected file size %d, got %d", expected, info.Size())
	}
}

func TestCloseTwice(t *testing.T) {
	tempDir := t.TempDir()
	filename := filepath.Join(tempDir, "test.log")

	writer, closer, err := New(Config{Filename: filename})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	if _, err := writer.Write([]byte("x\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Second close should be a no-op, got: %v", err)
	}
}
