package rotate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const defaultExt = ".log"

// 轮转触发方式
type trigger int

const (
	triggerMidnight trigger = iota // 按天（日期变化时轮转）
	triggerHour
	triggerMinute
)

// 备份文件名的日期格式（随触发方式变化）
func (t trigger) stampLayout() string {
	switch t {
	case triggerHour:
		return "2006-01-02_15"
	case triggerMinute:
		return "2006-01-02_15-04"
	default:
		return "2006-01-02"
	}
}

// Writer 实现了 io.WriteCloser 接口，支持按时间轮转
// 文件在第一次 Write 时才创建，避免为未使用的日志生成空文件
type Writer struct {
	config Config
	when   trigger
	file   *os.File
	mu     sync.Mutex

	// 当前周期的起止时间
	periodStart time.Time
	periodEnd   time.Time

	// 文件名的基础部分和扩展名
	basename string // 不含扩展名的文件名（包含路径）
	ext      string // 扩展名（包含点号，默认值为".log"）
}

// New 创建一个新的按时间轮转写入器
// 此时不会触碰文件系统，目录和文件在第一次写入时创建
func New(config Config) (io.Writer, io.Closer, error) {
	if config.Filename == "" {
		return nil, nil, fmt.Errorf("filename is required")
	}

	when, err := parseWhen(config.When)
	if err != nil {
		return nil, nil, err
	}

	if config.Interval <= 0 {
		config.Interval = 1
	}

	// 标准化文件名（确保有扩展名）
	config.Filename = normalizeFilename(config.Filename)

	w := &Writer{
		config: config,
		when:   when,
	}
	w.basename, w.ext = splitFilename(w.config.Filename)

	return w, w, nil
}

// MustNew 创建一个新的按时间轮转写入器（失败时 panic）
func MustNew(config Config) (io.Writer, io.Closer) {
	writer, closer, err := New(config)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize rotate writer: %v", err))
	}
	return writer, closer
}

// Write 实现 io.Writer 接口
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()

	if w.file == nil {
		if err := w.open(now); err != nil {
			return 0, err
		}
	}

	// 检查是否跨周期，需要轮转
	if !now.Before(w.periodEnd) {
		if err := w.rotate(now); err != nil {
			return 0, err
		}
	}

	return w.file.Write(p)
}

// Close 实现 io.Closer 接口
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil
	return err
}

// open 第一次写入时打开日志文件
// 如果磁盘上残留着上一个周期的文件，先轮转再打开
func (w *Writer) open(now time.Time) error {
	// 确保目录存在
	if err := os.MkdirAll(filepath.Dir(w.config.Filename), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	info, err := os.Stat(w.config.Filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat log file: %w", err)
		}
		// 文件不存在，直接创建
		return w.openFile(now)
	}

	// 文件存在，检查最后修改时间所属的周期
	start, end := w.periodOf(info.ModTime())
	if !now.Before(end) {
		// 属于以前的周期，立即轮转
		w.periodStart, w.periodEnd = start, end
		return w.rotate(now)
	}

	return w.openFile(now)
}

// openFile 打开或创建当前日志文件，并更新周期
func (w *Writer) openFile(now time.Time) error {
	w.periodStart, w.periodEnd = w.periodOf(now)

	file, err := os.OpenFile(w.config.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	w.file = file
	return nil
}

// rotate 执行轮转
func (w *Writer) rotate(now time.Time) error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return err
		}
		w.file = nil
	}

	// 生成备份文件名：{basename}-{stamp}{ext}
	backupName := w.backupName(w.periodStart)

	// 重命名当前文件
	if _, err := os.Stat(backupName); err == nil {
		// 备份文件已存在，追加内容
		if err := appendFile(w.config.Filename, backupName); err != nil {
			return fmt.Errorf("failed to append log file: %w", err)
		}
		if err := os.Remove(w.config.Filename); err != nil {
			return fmt.Errorf("failed to remove rotated file: %w", err)
		}
	} else {
		// 正常重命名
		if err := os.Rename(w.config.Filename, backupName); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to rename log file: %w", err)
			}
		}
	}

	// 打开新文件
	if err := w.openFile(now); err != nil {
		return err
	}

	// 异步清理多余的备份文件
	if w.config.BackupCount > 0 {
		go w.cleanup()
	}

	return nil
}

// periodOf 计算时间 t 所属周期的起止时间
func (w *Writer) periodOf(t time.Time) (start, end time.Time) {
	switch w.when {
	case triggerHour:
		d := time.Duration(w.config.Interval) * time.Hour
		start = t.Truncate(d)
		return start, start.Add(d)
	case triggerMinute:
		d := time.Duration(w.config.Interval) * time.Minute
		start = t.Truncate(d)
		return start, start.Add(d)
	default:
		start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		return start, start.AddDate(0, 0, w.config.Interval)
	}
}

// backupName 生成备份文件名：{basename}-{stamp}{ext}
// 例如：logs/app.log -> logs/app-2023-12-08.log
func (w *Writer) backupName(start time.Time) string {
	return fmt.Sprintf("%s-%s%s", w.basename, start.Format(w.when.stampLayout()), w.ext)
}

// cleanup 删除超出 BackupCount 的旧备份（从最旧的开始删）
func (w *Writer) cleanup() {
	dir := filepath.Dir(w.config.Filename)
	files, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	baseNameOnly := filepath.Base(w.basename)

	type backup struct {
		name  string
		stamp time.Time
	}
	var backups []backup

	for _, f := range files {
		if f.IsDir() {
			continue
		}

		stamp, ok := w.parseBackupStamp(f.Name(), baseNameOnly)
		if !ok {
			continue
		}
		backups = append(backups, backup{name: f.Name(), stamp: stamp})
	}

	if len(backups) <= w.config.BackupCount {
		return
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].stamp.Before(backups[j].stamp)
	})

	for _, b := range backups[:len(backups)-w.config.BackupCount] {
		os.Remove(filepath.Join(dir, b.name))
	}
}

// parseBackupStamp 从备份文件名中解析周期时间
// 格式：{basename}-{stamp}{ext}
func (w *Writer) parseBackupStamp(filename, baseName string) (time.Time, bool) {
	// 检查前缀
	if !strings.HasPrefix(filename, baseName+"-") {
		return time.Time{}, false
	}

	// 检查后缀
	if !strings.HasSuffix(filename, w.ext) {
		return time.Time{}, false
	}

	// 提取时间部分
	stampPart := filename[len(baseName)+1 : len(filename)-len(w.ext)]

	stamp, err := time.ParseInLocation(w.when.stampLayout(), stampPart, time.Local)
	if err != nil {
		return time.Time{}, false
	}

	return stamp, true
}

// parseWhen 解析轮转触发方式
func parseWhen(when string) (trigger, error) {
	switch strings.ToLower(when) {
	case "", "midnight", "d", "day":
		return triggerMidnight, nil
	case "hour", "h":
		return triggerHour, nil
	case "minute", "m":
		return triggerMinute, nil
	default:
		return triggerMidnight, fmt.Errorf("invalid rotation trigger: %s", when)
	}
}

// normalizeFilename 标准化文件名，确保有扩展名
func normalizeFilename(filename string) string {
	if filepath.Ext(filename) == "" {
		return filename + defaultExt
	}
	return filename
}

// splitFilename 将文件名分割为基础部分和扩展名
// 例如："logs/app.log" -> ("logs/app", ".log")
func splitFilename(filename string) (basename, ext string) {
	ext = filepath.Ext(filename)
	basename = filename[:len(filename)-len(ext)]
	return basename, ext
}

// appendFile 将 src 文件内容追加到 dst 文件
func appendFile(src, dst string) error {
	s, err := os.Open(src)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := os.OpenFile(dst, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o666)
	if err != nil {
		return err
	}
	defer d.Close()

	_, err = io.Copy(d, s)
	return err
}
