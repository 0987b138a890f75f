package relay

import "encoding/json"

// Event 输出给调用方的中继事件
type Event interface {
	eventTag() byte
}

// TextDelta 一段助手文本
type TextDelta struct {
	Text string
}

// ToolInvocation 一次已完成的工具调用及其结果
type ToolInvocation struct {
	ToolCallID string
	ToolName   string
	Args       json.RawMessage
	Result     json.RawMessage
	Error      string
}

// Annotations 固定为空的注解数组
type Annotations struct{}

// Usage token 统计，目前总是零值
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// Finish 流的最后一个事件
type Finish struct {
	Reason string
	Usage  Usage
}

// StreamError 流开始后发生的传输错误，之后不再有其他事件
type StreamError struct {
	Message string
}

func (TextDelta) eventTag() byte      { return '0' }
func (ToolInvocation) eventTag() byte { return '9' }
func (Annotations) eventTag() byte    { return '8' }
func (Finish) eventTag() byte         { return 'd' }
func (StreamError) eventTag() byte    { return '3' }

// FinishReasonStop 正常结束
const FinishReasonStop = "stop"
