package logger

// 默认的时间戳格式（毫秒精度）
const defaultTimeLayout = "2006-01-02 15:04:05.000"

// Config 日志配置
type Config struct {
	// Dir 日志文件所在目录，不存在时自动创建（默认 logs）
	Dir string `yaml:"dir" json:"dir" toml:"dir"`

	// Name 三个日志文件的公共前缀（默认 project）
	// 生成 <name>_stdin.log / <name>_stdout.log / <name>_error.log
	Name string `yaml:"name" json:"name" toml:"name"`

	// Level 最低记录级别：debug/info/warning/error/critical（默认 debug）
	// 大小写不敏感，无法识别时回退到 debug
	Level string `yaml:"level" json:"level" toml:"level"`

	// When 轮转触发方式：midnight/hour/minute（默认 midnight）
	When string `yaml:"when" json:"when" toml:"when"`

	// Interval 轮转间隔倍数（默认 1）
	Interval int `yaml:"interval" json:"interval" toml:"interval"`

	// BackupCount 保留的历史文件数量（默认 7），负数表示全部保留
	BackupCount int `yaml:"backup_count" json:"backup_count" toml:"backup_count"`

	// EnableConsole 是否同时输出到控制台
	// stdout 日志镜像到标准输出，error 日志镜像到标准错误，stdin 日志不镜像
	EnableConsole bool `yaml:"enable_console" json:"enable_console" toml:"enable_console"`

	// TimeLayout 时间戳格式（默认 "2006-01-02 15:04:05.000"）
	TimeLayout string `yaml:"time_layout" json:"time_layout" toml:"time_layout"`
}

func normalize(cfg Config) Config {
	if cfg.Dir == "" {
		cfg.Dir = "logs"
	}
	if cfg.Name == "" {
		cfg.Name = "project"
	}
	if cfg.Level == "" {
		cfg.Level = "debug"
	}
	if cfg.When == "" {
		cfg.When = "midnight"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 1
	}
	if cfg.BackupCount == 0 {
		cfg.BackupCount = 7
	}
	if cfg.TimeLayout == "" {
		cfg.TimeLayout = defaultTimeLayout
	}
	return cfg
}
