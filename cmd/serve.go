package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"fleet-relay/internal/config"
	"fleet-relay/internal/server"
	"fleet-relay/internal/util"
)

var serveAddr string

// serveCmd 启动 HTTP 服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 对话中继服务",
	Long:  "启动 HTTP 服务，提供 /api/chat、/api/health 和 /api/status 接口",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "监听地址 (默认使用配置中的 server.addr)")
}

func runServe(ctx context.Context) error {
	cfg := config.Config
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	manager, err := newToolManager(store)
	if err != nil {
		return err
	}

	if !cfg.AI.CredentialConfigured() {
		util.Warn("未配置 OPENAI_API_KEY，对话请求将返回配置错误")
	}

	srv := server.New(newRelay(manager), server.Options{
		Addr:                 addr,
		ReadHeaderTimeout:    time.Duration(cfg.Server.ReadHeaderTimeout) * time.Second,
		Model:                cfg.AI.Model,
		StoreEngine:          cfg.Store.Engine,
		CredentialConfigured: cfg.AI.CredentialConfigured,
	})
	return srv.Run(ctx)
}
