package relay

import (
	"encoding/json"
	"fmt"
)

// DataStreamHeader 数据流协议版本头
const (
	DataStreamHeader  = "x-vercel-ai-data-stream"
	DataStreamVersion = "v1"
)

type toolInvocationRecord struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args"`
	Result     json.RawMessage `json:"result"`
}

type finishRecord struct {
	FinishReason string `json:"finishReason"`
	Usage        Usage  `json:"usage"`
}

// Encode 将事件编码为一行 "<tag>:<json>\n"
func Encode(ev Event) ([]byte, error) {
	var payload any
	switch e := ev.(type) {
	case TextDelta:
		payload = e.Text
	case ToolInvocation:
		payload = toolInvocationRecord{
			ToolCallID: e.ToolCallID,
			ToolName:   e.ToolName,
			Args:       orEmptyObject(e.Args),
			Result:     invocationResult(e),
		}
	case Annotations:
		payload = []any{}
	case Finish:
		payload = finishRecord{FinishReason: e.Reason, Usage: e.Usage}
	case StreamError:
		payload = e.Message
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	line := make([]byte, 0, len(data)+3)
	line = append(line, ev.eventTag(), ':')
	line = append(line, data...)
	return append(line, '\n'), nil
}

// 失败的调用以 {"error": "..."} 作为结果
func invocationResult(e ToolInvocation) json.RawMessage {
	if e.Error != "" {
		b, _ := json.Marshal(map[string]string{"error": e.Error})
		return b
	}
	if len(e.Result) == 0 {
		return json.RawMessage("null")
	}
	return e.Result
}

func orEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}
