package config

import (
	"os"
	"path/filepath"
	"testing"

	"fleet-relay/internal/common/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "FLEET_RELAY_ADDR", "PORT", "LOG_LEVEL", "FLEET_RELAY_CONFIG"} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	// 创建临时配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.toml")

	configContent := `
[server]
addr = ":8080"

[ai]
type = "openai"
api_key = "sk-test-key-123456"
base_url = "https://test.api.com/v1"
model = "test-model"
timeout = 60

[relay]
fallback_text = "工具结果如上。"

[store]
engine = "memory"

[logging]
level = "debug"
format = "json"
output = "stdout"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}

	// 测试加载配置
	err = LoadConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	// 验证配置值
	if Config.Server.Addr != ":8080" {
		t.Errorf("期望监听地址为 ':8080'，实际为 '%s'", Config.Server.Addr)
	}

	if Config.AI.Timeout != 60 {
		t.Errorf("期望超时时间为 60，实际为 %d", Config.AI.Timeout)
	}

	if Config.AI.MaxTokens != DefaultMaxTokens {
		t.Errorf("期望 max_tokens 使用默认值 %d，实际为 %d", DefaultMaxTokens, Config.AI.MaxTokens)
	}

	if Config.AI.Temperature != DefaultTemperature {
		t.Errorf("期望 temperature 使用默认值 %v，实际为 %v", DefaultTemperature, Config.AI.Temperature)
	}

	if Config.Relay.FallbackText != "工具结果如上。" {
		t.Errorf("期望兜底文本被覆盖，实际为 '%s'", Config.Relay.FallbackText)
	}

	if Config.Store.Engine != "memory" {
		t.Errorf("期望存储引擎为 'memory'，实际为 '%s'", Config.Store.Engine)
	}

	if Config.Logging.Level != "debug" {
		t.Errorf("期望日志级别为 'debug'，实际为 '%s'", Config.Logging.Level)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env-abcdef")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("PORT", "9000")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[ai]\napi_key = \"${OPENAI_API_KEY}\"\n"), 0644); err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}

	if err := LoadConfig(configPath); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if Config.AI.APIKey != "sk-from-env-abcdef" {
		t.Errorf("期望密钥来自环境变量，实际为 '%s'", Config.AI.APIKey)
	}
	if Config.AI.Model != "gpt-4o" {
		t.Errorf("期望模型被 OPENAI_MODEL 覆盖，实际为 '%s'", Config.AI.Model)
	}
	if Config.Server.Addr != ":9000" {
		t.Errorf("期望监听地址为 ':9000'，实际为 '%s'", Config.Server.Addr)
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := LoadConfig(configPath); err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("期望创建默认配置文件: %v", err)
	}
	if Config.Server.Addr != DefaultAddr {
		t.Errorf("期望默认监听地址为 '%s'，实际为 '%s'", DefaultAddr, Config.Server.Addr)
	}
	if Config.AI.CredentialConfigured() {
		t.Error("默认配置中未展开的 ${OPENAI_API_KEY} 不应视为已配置")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	testCases := []struct {
		name    string
		content string
	}{
		{"无效日志级别", "[logging]\nlevel = \"verbose\"\n"},
		{"无效存储引擎", "[store]\nengine = \"postgres\"\n"},
		{"温度超出范围", "[ai]\ntemperature = 3.5\n"},
		{"文件输出缺少路径", "[logging]\noutput = \"file\"\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte(tc.content), 0644); err != nil {
				t.Fatalf("创建测试配置文件失败: %v", err)
			}
			err := LoadConfig(configPath)
			if err == nil {
				t.Fatal("期望配置验证失败")
			}
			if !errors.IsErrorCode(err, errors.ErrCodeConfigInvalid) {
				t.Errorf("期望错误代码为 %s，实际为 %s", errors.ErrCodeConfigInvalid, errors.GetErrorCode(err))
			}
		})
	}
}

func TestCredentialConfigured(t *testing.T) {
	testCases := []struct {
		key      string
		expected bool
	}{
		{"", false},
		{"   ", false},
		{"your_openai_api_key_here", false},
		{"your-openai-api-key", false},
		{"sk-your-key-here", false},
		{"${OPENAI_API_KEY}", false},
		{"sk-live-0123456789", true},
	}

	for _, tc := range testCases {
		c := AIConfig{APIKey: tc.key}
		if got := c.CredentialConfigured(); got != tc.expected {
			t.Errorf("CredentialConfigured(%q) = %v，期望 %v", tc.key, got, tc.expected)
		}
	}
}

func TestCheckCredential(t *testing.T) {
	err := AIConfig{APIKey: "your_openai_api_key_here"}.CheckCredential()
	if !errors.IsErrorCode(err, errors.ErrCodeAPIKeyMissing) {
		t.Errorf("期望错误代码为 %s，实际为 %s", errors.ErrCodeAPIKeyMissing, errors.GetErrorCode(err))
	}
	if err := (AIConfig{APIKey: "sk-real-key-987654"}).CheckCredential(); err != nil {
		t.Errorf("有效密钥不应返回错误: %v", err)
	}
}

func TestRedactedKey(t *testing.T) {
	c := AIConfig{APIKey: "sk-abcdefghijklmnop"}
	if got := c.RedactedKey(); got != "sk-****mnop" {
		t.Errorf("期望脱敏结果为 'sk-****mnop'，实际为 '%s'", got)
	}
	if got := (AIConfig{}).RedactedKey(); got != "(not configured)" {
		t.Errorf("未配置时期望为 '(not configured)'，实际为 '%s'", got)
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Relay.FallbackText != DefaultFallbackText {
		t.Errorf("期望默认兜底文本为 '%s'，实际为 '%s'", DefaultFallbackText, c.Relay.FallbackText)
	}
	if c.AI.Model != DefaultModel {
		t.Errorf("期望默认模型为 '%s'，实际为 '%s'", DefaultModel, c.AI.Model)
	}
}
