package cmd

import (
	"context"

	"fleet-relay/internal/config"
	"fleet-relay/internal/fleet"
	"fleet-relay/internal/llm"
	"fleet-relay/internal/relay"
	"fleet-relay/internal/tools"
	"fleet-relay/internal/util"
)

// openStore 按配置创建数据存储，每次启动都从静态数据重建
func openStore(ctx context.Context) (fleet.Store, error) {
	store, err := fleet.Open(ctx, config.Config.Store.Engine, fleet.DefaultFixtures())
	if err != nil {
		return nil, err
	}
	util.Debugw("数据存储已就绪", map[string]any{"engine": config.Config.Store.Engine})
	return store, nil
}

// newToolManager 创建内置工具管理器，按配置启用结果缓存
func newToolManager(store fleet.Store) (*tools.DefaultToolManager, error) {
	var opts []tools.Option
	if c := config.Config.Cache; c.Enabled {
		opts = append(opts, tools.WithCache(tools.NewFreeCache(c.SizeMB, c.TTL)))
	}
	return tools.NewBuiltinManager(store, opts...)
}

// newRelay 创建对话中继，密钥在每次请求时检查
func newRelay(executor tools.Executor) *relay.Relay {
	ai := config.Config.AI
	return relay.New(llm.NewClient(ai), executor, relay.Options{
		Model:        ai.Model,
		Temperature:  ai.Temperature,
		MaxTokens:    ai.MaxTokens,
		SystemPrompt: config.Config.Relay.SystemPrompt,
		FallbackText: config.Config.Relay.FallbackText,
	}, func() error {
		return config.Config.AI.CheckCredential()
	})
}
