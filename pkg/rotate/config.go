package rotate

// Config 日志轮转配置
type Config struct {
	// Filename 日志文件路径（必填）
	Filename string

	// When 轮转触发方式：midnight/hour/minute（默认 midnight）
	// 兼容 D/H/M 写法，大小写不敏感
	When string

	// Interval 轮转间隔倍数（每 N 天/小时/分钟），默认 1
	Interval int

	// BackupCount 保留的历史文件数量，0 表示不删除
	BackupCount int
}
