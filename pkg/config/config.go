package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format 配置文件格式
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatUnknown Format = "unknown"
)

// Detect 根据文件扩展名检测格式
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatUnknown
	}
}

// Load 加载配置文件并解析到 target（根据扩展名自动识别格式），默认支持环境变量替换
// 环境变量格式: ${ENV_VAR} 或 ${ENV_VAR:default_value}
// 这是最常用的加载方式，适合大多数场景
func Load(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config from file %s: %w", path, err)
	}

	format := Detect(path)
	if format == FormatUnknown {
		return fmt.Errorf("cannot detect format from file extension: %s", path)
	}

	return LoadBytes([]byte(expandEnvVars(string(data))), format, target)
}

// LoadWithoutEnv 加载配置文件但不替换环境变量
func LoadWithoutEnv(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config from file %s: %w", path, err)
	}

	format := Detect(path)
	if format == FormatUnknown {
		return fmt.Errorf("cannot detect format from file extension: %s", path)
	}

	return LoadBytes(data, format, target)
}

// LoadBytes 从字节流解析配置到 target
func LoadBytes(data []byte, format Format, target any) error {
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}

// MustLoad 加载配置文件并解析到 target（默认支持环境变量替换），失败时 panic
// 适用于程序启动阶段，配置加载失败时程序无法继续运行
func MustLoad(path string, target any) {
	if err := Load(path, target); err != nil {
		panic(fmt.Errorf("config: failed to load config from %s: %w", path, err))
	}
}

// expandEnvVars 在配置文本中展开环境变量
// 支持格式: ${ENV_VAR} 或 ${ENV_VAR:default_value}
func expandEnvVars(value string) string {
	if !strings.Contains(value, "${") {
		return value
	}

	result := value
	start := 0
	for {
		startIdx := strings.Index(result[start:], "${")
		if startIdx == -1 {
			break
		}
		startIdx += start

		endIdx := strings.Index(result[startIdx:], "}")
		if endIdx == -1 {
			break
		}
		endIdx += startIdx

		// 提取环境变量名和默认值
		envExpr := result[startIdx+2 : endIdx]
		envName := envExpr
		defaultValue := ""

		if colonIdx := strings.Index(envExpr, ":"); colonIdx != -1 {
			envName = envExpr[:colonIdx]
			defaultValue = envExpr[colonIdx+1:]
		}

		envValue := os.Getenv(envName)
		if envValue == "" {
			envValue = defaultValue
		}

		result = result[:startIdx] + envValue + result[endIdx+1:]
		start = startIdx + len(envValue)
	}

	return result
}
