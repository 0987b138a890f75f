package llm

import "github.com/tidwall/gjson"

// ToolCallFragment 流式工具调用片段，同一 index 的片段属于同一个调用
type ToolCallFragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Delta 一条流式增量
type Delta struct {
	Content      string
	ToolCalls    []ToolCallFragment
	FinishReason string
	// Error 上游在流中返回的错误消息
	Error string
}

// Empty 不携带任何内容
func (d Delta) Empty() bool {
	return d.Content == "" && len(d.ToolCalls) == 0 && d.FinishReason == "" && d.Error == ""
}

// DecodeDelta 解析一条 data 负载，非法 JSON 返回 false
func DecodeDelta(payload string) (Delta, bool) {
	if !gjson.Valid(payload) {
		return Delta{}, false
	}

	var d Delta
	if errMsg := gjson.Get(payload, "error.message"); errMsg.Exists() {
		d.Error = errMsg.String()
		if d.Error == "" {
			d.Error = "upstream stream error"
		}
		return d, true
	}

	choice := gjson.Get(payload, "choices.0")
	if !choice.Exists() {
		return d, true
	}

	if content := choice.Get("delta.content"); content.Type == gjson.String {
		d.Content = content.String()
	}

	choice.Get("delta.tool_calls").ForEach(func(_, tc gjson.Result) bool {
		d.ToolCalls = append(d.ToolCalls, ToolCallFragment{
			Index:     int(tc.Get("index").Int()),
			ID:        tc.Get("id").String(),
			Name:      tc.Get("function.name").String(),
			Arguments: tc.Get("function.arguments").String(),
		})
		return true
	})

	if reason := choice.Get("finish_reason"); reason.Type == gjson.String {
		d.FinishReason = reason.String()
	}
	return d, true
}
