package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleet-relay/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "配置管理",
	Long:  "查看 fleet-relay 的配置文件和生效的设置",
}

// configShowCmd represents the show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示当前配置",
	Run: func(cmd *cobra.Command, args []string) {
		showConfig()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

// showConfig 显示配置信息，密钥只显示脱敏后的形式
func showConfig() {
	cfg := config.Config
	fmt.Println("当前配置:")
	fmt.Printf("  配置文件: %s\n", configPath)
	fmt.Printf("  监听地址: %s\n", cfg.Server.Addr)
	fmt.Printf("  AI 类型: %s\n", cfg.AI.Type)
	fmt.Printf("  AI 地址: %s\n", cfg.AI.BaseURL)
	fmt.Printf("  AI 模型: %s\n", cfg.AI.Model)
	fmt.Printf("  API 密钥: %s\n", cfg.AI.RedactedKey())
	fmt.Printf("  上游超时: %ds\n", cfg.AI.Timeout)
	fmt.Printf("  数据存储: %s\n", cfg.Store.Engine)
	fmt.Printf("  日志级别: %s\n", cfg.Logging.Level)

	if verbose {
		fmt.Printf("  温度: %.2f\n", cfg.AI.Temperature)
		fmt.Printf("  最大 token: %d\n", cfg.AI.MaxTokens)
		fmt.Printf("  兜底文本: %s\n", cfg.Relay.FallbackText)
		fmt.Printf("  自定义系统提示词: %t\n", cfg.Relay.SystemPrompt != "")
		fmt.Printf("  结果缓存: %t (%dMB, %ds)\n", cfg.Cache.Enabled, cfg.Cache.SizeMB, cfg.Cache.TTL)
		fmt.Printf("  日志格式: %s\n", cfg.Logging.Format)
		fmt.Printf("  日志输出: %s\n", cfg.Logging.Output)
	}
}
