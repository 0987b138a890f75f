package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fleet-relay/internal/config"
	"fleet-relay/internal/mcp"
	"fleet-relay/internal/util"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP 服务",
	Long:  "通过 Model Context Protocol 暴露 GPU 集群查询工具",
}

// mcpServeCmd 在 stdio 上运行 MCP 服务
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "在标准输入输出上运行 MCP 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout 是协议通道，日志改写到 stderr
		if config.Config.Logging.Output == "stdout" {
			level := config.Config.Logging.Level
			if verbose {
				level = "debug"
			}
			if err := util.InitLogger(logOptions(level, "stderr")); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		manager, err := newToolManager(store)
		if err != nil {
			return err
		}
		return mcp.ServeStdio(ctx, manager, Version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.AddCommand(mcpServeCmd)
}
