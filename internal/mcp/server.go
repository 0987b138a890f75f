package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/tools"
	"fleet-relay/internal/util"
)

// ServerName MCP 服务名称
const ServerName = "fleet-relay"

// NewServer 创建 MCP 服务，暴露与对话中继相同的工具集
func NewServer(manager tools.ToolManager, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)

	for _, tool := range manager.GetTools() {
		server.AddTool(&mcp.Tool{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.Parameters(),
		}, toolHandler(manager, tool.Name()))
	}

	util.Debugw("MCP 工具注册完成", map[string]any{
		"tool_count": len(manager.GetTools()),
	})
	return server
}

// toolHandler 把 MCP 调用转换为工具调用。工具失败作为 IsError 结果返回，不作为协议错误。
func toolHandler(manager tools.ToolManager, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args string
		if req.Params != nil {
			args = string(req.Params.Arguments)
		}

		result := manager.Execute(ctx, tools.ToolCall{ID: "mcp", Name: name, Arguments: args})

		util.Infow("MCP 工具调用", map[string]any{
			"tool_name": name,
			"is_error":  result.Error != "",
		})

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result.Content()}},
			IsError: result.Error != "",
		}, nil
	}
}

// ServeStdio 在标准输入输出上运行 MCP 服务，直到 ctx 结束或客户端断开
func ServeStdio(ctx context.Context, manager tools.ToolManager, version string) error {
	// stdout 是协议通道，日志不能写到这里
	util.Infow("MCP 服务启动", map[string]any{"transport": "stdio"})

	if err := NewServer(manager, version).Run(ctx, &mcp.StdioTransport{}); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.WrapError(errors.ErrCodeMCPServeFailed, "MCP 服务运行失败", err)
	}
	return nil
}
