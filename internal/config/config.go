package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/util"
)

// 全局配置实例
var Config *AppConfig

// 应用配置结构
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	AI      AIConfig      `toml:"ai"`
	Relay   RelayConfig   `toml:"relay"`
	Store   StoreConfig   `toml:"store"`
	Cache   CacheConfig   `toml:"cache"`
	Logging LoggingConfig `toml:"logging"`
}

// HTTP 服务配置
type ServerConfig struct {
	Addr              string `toml:"addr"`
	ReadHeaderTimeout int    `toml:"read_header_timeout"` // 秒
}

// AI配置
type AIConfig struct {
	Type        string  `toml:"type"` // 目前只支持 "openai" 兼容接口
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     int     `toml:"timeout"` // 单次上游请求的超时时间（秒）
}

// 对话中继配置
type RelayConfig struct {
	FallbackText string `toml:"fallback_text"`
	SystemPrompt string `toml:"system_prompt"` // 为空时使用内置提示词
}

// 数据存储配置
type StoreConfig struct {
	Engine string `toml:"engine"` // tinysql, memory
}

// 工具结果缓存配置
type CacheConfig struct {
	Enabled bool `toml:"enabled"`
	SizeMB  int  `toml:"size_mb"`
	TTL     int  `toml:"ttl"` // 秒
}

// 日志配置
type LoggingConfig struct {
	Level      string `toml:"level"`  // debug, info, warn, error
	Format     string `toml:"format"` // json, text
	Output     string `toml:"output"` // stdout, stderr, file
	File       string `toml:"file"`   // 日志文件路径
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// 默认值
const (
	DefaultAddr         = ":3001"
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "gpt-4o-mini"
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 1000
	DefaultTimeout      = 120
	DefaultFallbackText = "Based on the tool results above, here is the information you requested."
	DefaultStoreEngine  = "tinysql"
	DefaultCacheSizeMB  = 8
	DefaultCacheTTL     = 60
)

// 被视为“未配置”的占位密钥
var placeholderKeys = []string{
	"your_openai_api_key_here",
	"your-openai-api-key",
	"sk-your-key-here",
}

// CredentialConfigured 判断是否配置了可用的上游密钥
func (c AIConfig) CredentialConfigured() bool {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return false
	}
	for _, p := range placeholderKeys {
		if key == p {
			return false
		}
	}
	// 未展开的 ${VAR} 模板
	if strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}") {
		return false
	}
	return true
}

// CheckCredential 每次对话请求前调用，未配置时返回配置错误
func (c AIConfig) CheckCredential() error {
	if c.CredentialConfigured() {
		return nil
	}
	return errors.NewCredentialError("请设置 OPENAI_API_KEY 环境变量或 [ai].api_key")
}

// RedactedKey 返回用于展示的密钥
func (c AIConfig) RedactedKey() string {
	if !c.CredentialConfigured() {
		return "(not configured)"
	}
	key := c.APIKey
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "****" + key[len(key)-4:]
}

// LoadDotEnv 加载 .env 文件，已存在的环境变量不会被覆盖
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if !util.FileExists(p) {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// 加载配置文件
func LoadConfig(configPath string) error {
	// 如果没有指定配置文件路径，先看环境变量，再使用默认路径
	if configPath == "" {
		configPath = os.Getenv("FLEET_RELAY_CONFIG")
	}
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 检查配置文件是否存在
	if !util.FileExists(configPath) {
		// 创建默认配置文件
		if err := createDefaultConfig(configPath); err != nil {
			return errors.WrapError(errors.ErrCodeConfigLoadFailed, "创建默认配置文件失败", err)
		}
		fmt.Fprintf(os.Stderr, "已创建默认配置文件: %s\n", configPath)
	}

	// 解析TOML配置文件
	var config AppConfig
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return errors.WrapErrorWithDetails(errors.ErrCodeConfigParseFailed, "解析配置文件失败", err, configPath)
	}

	applyDefaults(&config)

	// 使用环境变量覆盖配置
	overrideWithEnv(&config)

	// 验证配置
	if err := validateConfig(&config); err != nil {
		return err
	}

	// 设置全局配置
	Config = &config
	return nil
}

// 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 优先使用当前目录下的config.toml
	if util.FileExists("config.toml") {
		return "config.toml"
	}

	// 使用用户主目录下的配置文件
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}

	return filepath.Join(homeDir, ".fleet-relay", "config.toml")
}

// 创建默认配置文件
func createDefaultConfig(configPath string) error {
	if err := util.EnsureParentDir(configPath); err != nil {
		return err
	}

	// 默认配置内容
	defaultConfig := `# fleet-relay 配置文件

[server]
addr = ":3001"
read_header_timeout = 10

[ai]
type = "openai"
# 也可以通过 OPENAI_API_KEY 环境变量或 .env 文件提供
api_key = "${OPENAI_API_KEY}"
base_url = "https://api.openai.com/v1"
model = "gpt-4o-mini"
temperature = 0.7
max_tokens = 1000
timeout = 120

[relay]
fallback_text = "Based on the tool results above, here is the information you requested."
system_prompt = ""

[store]
engine = "tinysql"

[cache]
enabled = true
size_mb = 8
ttl = 60

[logging]
level = "info"
format = "text"
output = "stderr"
file = ""
max_size_mb = 10
max_backups = 3
`

	return os.WriteFile(configPath, []byte(defaultConfig), 0644)
}

// applyDefaults 补齐配置文件中缺省的字段
func applyDefaults(config *AppConfig) {
	if config.Server.Addr == "" {
		config.Server.Addr = DefaultAddr
	}
	if config.Server.ReadHeaderTimeout <= 0 {
		config.Server.ReadHeaderTimeout = 10
	}
	if config.AI.Type == "" {
		config.AI.Type = "openai"
	}
	if config.AI.BaseURL == "" {
		config.AI.BaseURL = DefaultBaseURL
	}
	if config.AI.Model == "" {
		config.AI.Model = DefaultModel
	}
	if config.AI.Temperature == 0 {
		config.AI.Temperature = DefaultTemperature
	}
	if config.AI.MaxTokens <= 0 {
		config.AI.MaxTokens = DefaultMaxTokens
	}
	if config.AI.Timeout <= 0 {
		config.AI.Timeout = DefaultTimeout
	}
	if config.Relay.FallbackText == "" {
		config.Relay.FallbackText = DefaultFallbackText
	}
	if config.Store.Engine == "" {
		config.Store.Engine = DefaultStoreEngine
	}
	if config.Cache.SizeMB <= 0 {
		config.Cache.SizeMB = DefaultCacheSizeMB
	}
	if config.Cache.TTL <= 0 {
		config.Cache.TTL = DefaultCacheTTL
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
	if config.Logging.Output == "" {
		config.Logging.Output = "stderr"
	}
}

// 使用环境变量覆盖配置
func overrideWithEnv(config *AppConfig) {
	// 上游模型配置
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.APIKey = apiKey
	} else {
		config.AI.APIKey = os.ExpandEnv(config.AI.APIKey)
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.Model = model
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.BaseURL = baseURL
	}

	// 监听地址
	if addr := os.Getenv("FLEET_RELAY_ADDR"); addr != "" {
		config.Server.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		config.Server.Addr = ":" + port
	}

	// 日志配置
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// 验证配置
func validateConfig(config *AppConfig) error {
	if config.AI.Type != "openai" {
		return errors.NewErrorWithDetails(errors.ErrCodeConfigInvalid, "不支持的AI类型", config.AI.Type)
	}

	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		return errors.NewErrorWithDetails(errors.ErrCodeConfigInvalid, "temperature 超出范围 [0, 2]",
			fmt.Sprintf("%v", config.AI.Temperature))
	}

	switch config.Store.Engine {
	case "tinysql", "memory":
	default:
		return errors.NewErrorWithDetails(errors.ErrCodeConfigInvalid, "无效的存储引擎", config.Store.Engine)
	}

	// 验证日志级别
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLevels {
		if strings.ToLower(config.Logging.Level) == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return errors.NewErrorWithDetails(errors.ErrCodeConfigInvalid, "无效的日志级别", config.Logging.Level)
	}

	if config.Logging.Output == "file" && config.Logging.File == "" {
		return errors.NewConfigError("日志输出为文件时必须指定 logging.file")
	}

	// 凭据不在这里校验，服务可以在没有密钥时启动，由每次对话请求检查
	return nil
}

// 获取当前配置
func GetConfig() *AppConfig {
	return Config
}

// Default 返回一份只包含默认值的配置，用于测试和未加载配置文件的场景
func Default() *AppConfig {
	var c AppConfig
	applyDefaults(&c)
	c.Cache.Enabled = true
	return &c
}
