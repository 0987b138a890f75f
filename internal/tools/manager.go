package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"fleet-relay/internal/fleet"
	"fleet-relay/internal/util"
)

// ToolManager 工具管理器接口
type ToolManager interface {
	Executor

	// GetTools 获取所有工具
	GetTools() []Tool

	// GetTool 根据名称获取工具
	GetTool(name string) (Tool, error)

	// ExecuteToolCall 执行工具调用，返回结果 JSON
	ExecuteToolCall(ctx context.Context, call ToolCall) (string, error)
}

// DefaultToolManager 默认工具管理器实现
type DefaultToolManager struct {
	registry *ToolRegistry // 工具注册表
	cache    ResultCache   // 可为空
}

// Option 管理器选项
type Option func(*DefaultToolManager)

// WithCache 启用结果缓存
func WithCache(cache ResultCache) Option {
	return func(m *DefaultToolManager) {
		m.cache = cache
	}
}

// NewToolManager 基于注册表创建工具管理器
func NewToolManager(registry *ToolRegistry, opts ...Option) *DefaultToolManager {
	m := &DefaultToolManager{registry: registry}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewBuiltinManager 创建绑定数据存储的内置工具管理器
func NewBuiltinManager(store fleet.Store, opts ...Option) (*DefaultToolManager, error) {
	registry, err := NewBuiltinRegistry(store)
	if err != nil {
		return nil, err
	}
	return NewToolManager(registry, opts...), nil
}

// GetTools 获取所有工具
func (m *DefaultToolManager) GetTools() []Tool {
	return m.registry.GetAllTools()
}

// GetTool 根据名称获取工具
func (m *DefaultToolManager) GetTool(name string) (Tool, error) {
	return m.registry.GetTool(name)
}

// Definitions 获取工具定义列表
func (m *DefaultToolManager) Definitions() []ToolDefinition {
	return m.registry.GetToolDefinitions()
}

// NormalizeArgs 解析参数文本，不是合法的 JSON 对象时返回空对象
func NormalizeArgs(raw string) json.RawMessage {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(trimmed)
}

// Execute 执行一次工具调用，失败信息记录在 Result.Error 中，不影响其他调用
func (m *DefaultToolManager) Execute(ctx context.Context, call ToolCall) Result {
	args := NormalizeArgs(call.Arguments)
	result := Result{ToolCallID: call.ID, ToolName: call.Name, Args: args}

	output, err := m.execute(ctx, call, args)
	if err != nil {
		switch util.GetErrorCode(err) {
		case util.ErrCodeToolNotFound, util.ErrCodeInvalidParam:
			result.Error = util.NewToolNotFoundError(call.Name).Message
		default:
			result.Error = errorMessage(err)
		}
		return result
	}
	result.Output = output
	return result
}

// ExecuteToolCall 执行工具调用
func (m *DefaultToolManager) ExecuteToolCall(ctx context.Context, call ToolCall) (string, error) {
	output, err := m.execute(ctx, call, NormalizeArgs(call.Arguments))
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func (m *DefaultToolManager) execute(ctx context.Context, call ToolCall, args json.RawMessage) (json.RawMessage, error) {
	startTime := time.Now()

	// 记录工具调用开始
	util.Infow("开始执行工具调用", map[string]any{
		"tool_name": call.Name,
		"call_id":   call.ID,
		"arguments": string(args),
	})

	// 获取工具
	tool, err := m.registry.GetTool(call.Name)
	if err != nil {
		util.LogErrorWithFields(err, "工具获取失败", map[string]any{
			"tool_name": call.Name,
			"call_id":   call.ID,
		})
		return nil, err
	}

	cacheKey := m.cacheKey(tool, args)
	if cacheKey != "" {
		if cached, ok := m.cache.Get(cacheKey); ok {
			util.Debugw("工具结果命中缓存", map[string]any{
				"tool_name": call.Name,
				"call_id":   call.ID,
			})
			return json.RawMessage(cached), nil
		}
	}

	// 执行工具
	value, err := tool.Execute(ctx, args)
	executionTime := time.Since(startTime)

	if err != nil {
		// 记录执行失败
		util.LogErrorWithFields(err, "工具执行失败", map[string]any{
			"tool_name":      call.Name,
			"call_id":        call.ID,
			"execution_time": executionTime,
		})

		return nil, util.NewToolExecutionError(call.Name, err)
	}

	output, err := json.Marshal(value)
	if err != nil {
		return nil, util.NewToolExecutionError(call.Name, err)
	}

	if cacheKey != "" {
		m.cache.Set(cacheKey, output)
	}

	// 记录执行成功
	util.Infow("工具执行成功", map[string]any{
		"tool_name":      call.Name,
		"call_id":        call.ID,
		"execution_time": executionTime,
		"result_length":  len(output),
	})

	return output, nil
}

func (m *DefaultToolManager) cacheKey(tool Tool, args json.RawMessage) string {
	if m.cache == nil {
		return ""
	}
	c, ok := tool.(interface{ canonicalArgs(json.RawMessage) []byte })
	if !ok {
		return ""
	}
	canonical := c.canonicalArgs(args)
	if canonical == nil {
		return ""
	}
	return tool.Name() + ":" + string(canonical)
}

// errorMessage 返回适合放进工具结果的错误描述
func errorMessage(err error) string {
	appErr, ok := util.AsAppError(err)
	if !ok {
		return err.Error()
	}
	if appErr.Cause != nil {
		return appErr.Message + ": " + appErr.Cause.Error()
	}
	return appErr.Message
}
