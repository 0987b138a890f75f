package tools

import (
	"context"
	"encoding/json"
)

// Kind 内置工具种类。工具集合固定，运行时不可变。
type Kind int

const (
	KindQueryDatacenters Kind = iota + 1
	KindMostGPUs
	KindTotalPower
	KindUnderutilized
)

// 工具名称，即上游模型看到的 function name
const (
	NameQueryDatacenters = "queryDatacenters"
	NameMostGPUs         = "getDatacenterWithMostGPUs"
	NameTotalPower       = "getTotalPowerConsumption"
	NameUnderutilized    = "findUnderutilizedGPUs"
)

var kindNames = map[Kind]string{
	KindQueryDatacenters: NameQueryDatacenters,
	KindMostGPUs:         NameMostGPUs,
	KindTotalPower:       NameTotalPower,
	KindUnderutilized:    NameUnderutilized,
}

// AllKinds 按清单顺序返回全部工具种类
func AllKinds() []Kind {
	return []Kind{KindQueryDatacenters, KindMostGPUs, KindTotalPower, KindUnderutilized}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind 根据工具名称查找种类，未知名称返回 false
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Tool 工具接口定义
type Tool interface {
	// Kind 返回工具种类
	Kind() Kind

	// Name 返回工具的名称
	Name() string

	// Description 获取工具描述
	Description() string

	// Parameters 获取工具参数schema
	Parameters() map[string]any

	// Execute 执行工具，args 为已经规整过的 JSON 对象
	Execute(ctx context.Context, args json.RawMessage) (any, error)
}

// ToolDefinition 工具定义结构
type ToolDefinition struct {
	Name        string         `json:"name"`        // 工具名称
	Description string         `json:"description"` // 工具描述
	Parameters  map[string]any `json:"parameters"`  // 参数schema
}

// ToolCall 工具调用结构，Arguments 为上游流式拼接得到的原始参数文本
type ToolCall struct {
	ID        string `json:"id"`        // 调用ID
	Name      string `json:"name"`      // 工具名称
	Arguments string `json:"arguments"` // 调用参数
}

// Result 一次工具调用的结果，成功时 Output 有值，失败时 Error 有值
type Result struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args"`
	Output     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Content 返回回传给上游模型的 tool 消息内容
func (r Result) Content() string {
	if r.Error != "" {
		b, _ := json.Marshal(map[string]string{"error": r.Error})
		return string(b)
	}
	return string(r.Output)
}

// Executor 对话中继使用的工具执行能力
type Executor interface {
	Definitions() []ToolDefinition
	Execute(ctx context.Context, call ToolCall) Result
}

// 数据集为空时的统一结果
const noDatacentersMessage = "No datacenters found in database"

type errorResult struct {
	Error string `json:"error"`
}

func emptyStoreResult() errorResult {
	return errorResult{Error: noDatacentersMessage}
}
