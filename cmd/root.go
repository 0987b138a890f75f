package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/config"
	"fleet-relay/internal/util"
)

// Version 程序版本
const Version = "0.1.0"

var (
	// configPath 是配置文件的路径
	configPath string
	// verbose 标志用于启用详细输出
	verbose bool
)

// rootCmd 代表没有调用子命令时的基础命令
var rootCmd = &cobra.Command{
	Use:   "fleet-relay",
	Short: "GPU 集群对话中继",
	Long: `fleet-relay 把对话请求转发给 OpenAI 兼容的模型，
在中途执行 GPU 集群查询工具，并以数据流协议返回结果。`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
	Run: func(cmd *cobra.Command, args []string) {
		// 默认行为：显示状态信息
		showStatus()
	},
}

// Execute 将所有子命令添加到根命令并适当设置标志。
// 这是由 main.main() 调用的。它只需要对 rootCmd 调用一次。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "命令执行失败: %s\n", errors.GetUserFriendlyMessage(err))
		util.LogError(err, "命令执行失败")
		os.Exit(1)
	}
}

func init() {
	// 全局标志
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径 (默认: $FLEET_RELAY_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出")
}

// initializeApp 初始化应用
func initializeApp() error {
	// 1. .env 先于配置文件加载，配置中的 ${VAR} 和环境变量覆盖都能用到
	config.LoadDotEnv()

	// 2. 加载配置文件
	if err := config.LoadConfig(configPath); err != nil {
		return errors.WrapConfigError("配置加载失败", err)
	}

	// 3. 根据verbose标志调整日志级别
	logLevel := config.Config.Logging.Level
	if verbose {
		logLevel = "debug"
	}

	// 4. 初始化日志系统
	if err := util.InitLogger(logOptions(logLevel, config.Config.Logging.Output)); err != nil {
		return errors.WrapError(errors.ErrCodeConfigInvalid, "日志系统初始化失败", err)
	}
	util.RegisterErrorReporter()

	util.Debugw("配置详情", map[string]any{
		"model":       config.Config.AI.Model,
		"base_url":    config.Config.AI.BaseURL,
		"store":       config.Config.Store.Engine,
		"log_level":   logLevel,
		"config_path": configPath,
	})
	return nil
}

func logOptions(level, output string) util.LogOptions {
	return util.LogOptions{
		Level:      level,
		Format:     config.Config.Logging.Format,
		Output:     output,
		File:       config.Config.Logging.File,
		MaxSizeMB:  config.Config.Logging.MaxSizeMB,
		MaxBackups: config.Config.Logging.MaxBackups,
	}
}

// showStatus 显示应用状态
func showStatus() {
	cfg := config.Config
	fmt.Printf("fleet-relay %s\n", Version)
	fmt.Printf("模型: %s (%s)\n", cfg.AI.Model, cfg.AI.BaseURL)
	fmt.Printf("API 密钥: %s\n", cfg.AI.RedactedKey())
	fmt.Printf("数据存储: %s\n", cfg.Store.Engine)
	fmt.Printf("监听地址: %s\n", cfg.Server.Addr)
	fmt.Printf("日志级别: %s\n", cfg.Logging.Level)
	fmt.Println("\n使用 'fleet-relay --help' 查看可用命令")
}
