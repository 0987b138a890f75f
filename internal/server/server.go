package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/relay"
	"fleet-relay/internal/util"
)

// 优雅关闭的最长等待时间
const shutdownTimeout = 10 * time.Second

// Options HTTP 服务参数
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration

	// 以下字段仅用于 /api/status
	Model                string
	StoreEngine          string
	CredentialConfigured func() bool
}

// Server 对话中继的 HTTP 服务
type Server struct {
	relay   *relay.Relay
	opts    Options
	engine  *gin.Engine
	started time.Time
}

// New 创建 HTTP 服务并注册路由
func New(r *relay.Relay, opts Options) *Server {
	if opts.CredentialConfigured == nil {
		opts.CredentialConfigured = func() bool { return false }
	}

	s := &Server{
		relay:   r,
		opts:    opts,
		started: time.Now(),
	}

	engine := gin.New()
	engine.Use(errors.RecoveryMiddleware(), requestID(), accessLog(), cors())

	api := engine.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/health", s.handleHealth)
		api.GET("/status", s.handleStatus)
	}

	s.engine = engine
	return s
}

// Handler 返回 gin 引擎，测试时直接使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 启动服务，ctx 结束后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		util.Infow("HTTP 服务启动", map[string]interface{}{
			"addr":  s.opts.Addr,
			"model": s.opts.Model,
			"store": s.opts.StoreEngine,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.WrapError(errors.ErrCodeInitializationFailed, "HTTP 服务启动失败", err)
		}
		return nil
	case <-ctx.Done():
	}

	util.Info("正在关闭 HTTP 服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.WrapError(errors.ErrCodeSystemError, "HTTP 服务关闭失败", err)
	}
	util.Info("HTTP 服务已关闭")
	return nil
}
