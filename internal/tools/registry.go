package tools

import (
	"fmt"
	"sort"
	"sync"

	"fleet-relay/internal/util"
)

// ToolRegistry 工具注册表，按种类索引，列出时按种类顺序返回
type ToolRegistry struct {
	tools map[Kind]Tool // 工具映射表
	mutex sync.RWMutex  // 读写锁
}

// NewToolRegistry 创建新的工具注册表
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[Kind]Tool),
	}
}

// RegisterTool 注册工具
func (r *ToolRegistry) RegisterTool(tool Tool) error {
	if tool == nil {
		return util.NewError(util.ErrCodeInvalidParam, "工具不能为空")
	}

	name := tool.Name()
	if name == "" {
		return util.NewError(util.ErrCodeInvalidParam, "工具名称不能为空")
	}
	if kind, ok := ParseKind(name); !ok || kind != tool.Kind() {
		return util.NewErrorWithDetail(util.ErrCodeInvalidParam, "工具名称与种类不匹配",
			fmt.Sprintf("工具名称: %s, 种类: %s", name, tool.Kind()))
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// 检查是否已存在同名工具
	if _, exists := r.tools[tool.Kind()]; exists {
		return util.NewErrorWithDetail(util.ErrCodeInvalidParam, "工具已存在",
			fmt.Sprintf("工具名称: %s", name))
	}

	r.tools[tool.Kind()] = tool
	util.Debugw("工具注册成功", map[string]any{
		"tool_name": name,
	})

	return nil
}

// GetTool 根据名称获取工具，未知名称返回 "Unknown tool: <name>"
func (r *ToolRegistry) GetTool(name string) (Tool, error) {
	if name == "" {
		return nil, util.NewError(util.ErrCodeInvalidParam, "工具名称不能为空")
	}

	kind, ok := ParseKind(name)
	if !ok {
		return nil, util.NewToolNotFoundError(name)
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tool, exists := r.tools[kind]
	if !exists {
		return nil, util.NewToolNotFoundError(name)
	}

	return tool, nil
}

// GetAllTools 获取所有工具
func (r *ToolRegistry) GetAllTools() []Tool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Kind() < tools[j].Kind() })

	return tools
}

// GetToolDefinitions 获取所有工具定义
func (r *ToolRegistry) GetToolDefinitions() []ToolDefinition {
	tools := r.GetAllTools()

	definitions := make([]ToolDefinition, 0, len(tools))
	for _, tool := range tools {
		definitions = append(definitions, ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}

	return definitions
}

// Count 已注册工具数量
func (r *ToolRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.tools)
}
