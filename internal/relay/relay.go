package relay

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/llm"
	"fleet-relay/internal/tools"
	"fleet-relay/internal/util"
)

// Completer 流式对话补全能力
type Completer interface {
	StreamChat(ctx context.Context, req llm.ChatRequest) (*http.Response, error)
}

// Message 调用方提交的一条消息
type Message struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"toolCallId,omitempty"`
}

// Options 中继参数
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	FallbackText string
}

// Relay 将一次对话请求转换为一条事件流，中间透明地执行工具调用
type Relay struct {
	completer       Completer
	executor        tools.Executor
	opts            Options
	checkCredential func() error
	newID           func() string
}

// New 创建中继。checkCredential 在每次请求时调用，可为空。
func New(completer Completer, executor tools.Executor, opts Options, checkCredential func() error) *Relay {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = SystemPrompt
	}
	return &Relay{
		completer:       completer,
		executor:        executor,
		opts:            opts,
		checkCredential: checkCredential,
		newID:           func() string { return "call_" + uuid.NewString() },
	}
}

type requestIDKey struct{}

// WithRequestID 在上下文中记录请求 ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom 读取请求 ID，没有时为空
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// 单次请求的状态
type state int

const (
	stateAwaitingFirstStream state = iota
	stateStreamingText
	stateExecutingTools
	stateAwaitingFollowup
	stateStreamingFollowup
	stateFinished
)

var stateNames = map[state]string{
	stateAwaitingFirstStream: "AwaitingFirstStream",
	stateStreamingText:       "StreamingText",
	stateExecutingTools:      "ExecutingTools",
	stateAwaitingFollowup:    "AwaitingFollowupStream",
	stateStreamingFollowup:   "StreamingFollowup",
	stateFinished:            "Finished",
}

func (s state) String() string { return stateNames[s] }

// turn 一次请求的全部可变状态，不在请求之间共享
type turn struct {
	relay     *Relay
	ctx       context.Context
	sink      Sink
	requestID string
	state     state
}

func (t *turn) transition(to state) {
	util.Debugw("中继状态变化", map[string]interface{}{
		"request_id": t.requestID,
		"from":       t.state.String(),
		"to":         to.String(),
	})
	t.state = to
}

// emit 输出事件，请求已取消时不再输出
func (t *turn) emit(ev Event) error {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	return t.sink.Emit(ev)
}

// 流读取中断时输出 StreamError 并结束
func (t *turn) streamError(err error) error {
	if t.ctx.Err() != nil {
		return t.ctx.Err()
	}
	util.LogErrorWithFields(err, "流读取中断", map[string]interface{}{
		"request_id": t.requestID,
		"state":      t.state.String(),
	})
	if emitErr := t.sink.Emit(StreamError{Message: err.Error()}); emitErr != nil {
		return emitErr
	}
	return errors.WrapStreamError("流读取中断", err)
}

func validateMessages(messages []Message) error {
	if len(messages) == 0 {
		return errors.NewInvalidParamError("messages 不能为空")
	}
	for i, m := range messages {
		switch m.Role {
		case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant, llm.RoleTool:
		default:
			return errors.NewErrorWithDetails(errors.ErrCodeInvalidParam, "无效的消息角色",
				"messages[" + strconv.Itoa(i) + "].role = " + m.Role)
		}
	}
	return nil
}

// buildMessages 在对话前添加系统提示词
func (r *Relay) buildMessages(messages []Message) []llm.Message {
	out := make([]llm.Message, 0, len(messages)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: r.opts.SystemPrompt})
	for _, m := range messages {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID})
	}
	return out
}

func (r *Relay) manifest() []llm.Tool {
	defs := r.executor.Definitions()
	out := make([]llm.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, llm.Tool{
			Type: "function",
			Function: llm.Function{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return out
}

func (r *Relay) request(messages []llm.Message, withTools bool) llm.ChatRequest {
	req := llm.ChatRequest{
		Model:       r.opts.Model,
		Messages:    messages,
		Temperature: r.opts.Temperature,
		MaxTokens:   r.opts.MaxTokens,
		Stream:      true,
	}
	if withTools {
		req.Tools = r.manifest()
		req.ToolChoice = "auto"
	}
	return req
}

// Handle 处理一次对话请求。
// 返回的错误都发生在输出开始之前（参数、凭据、首次上游请求），调用方应同步返回错误响应。
// 输出开始后的失败以事件形式写入 sink，此时总是返回 nil。
func (r *Relay) Handle(ctx context.Context, messages []Message, sink Sink) error {
	if err := validateMessages(messages); err != nil {
		return err
	}
	if r.checkCredential != nil {
		if err := r.checkCredential(); err != nil {
			return err
		}
	}

	t := &turn{relay: r, ctx: ctx, sink: sink, requestID: RequestIDFrom(ctx), state: stateAwaitingFirstStream}

	util.Infow("开始处理对话请求", map[string]interface{}{
		"request_id": t.requestID,
		"messages":   len(messages),
		"model":      r.opts.Model,
	})

	history := r.buildMessages(messages)
	resp, err := r.completer.StreamChat(ctx, r.request(history, true))
	if err != nil {
		util.LogErrorWithFields(err, "首次上游请求失败", map[string]interface{}{"request_id": t.requestID})
		return err
	}
	defer resp.Body.Close()

	if err := sink.Begin(); err != nil {
		return err
	}
	defer sink.Close()

	err = t.run(history, resp.Body)
	if err != nil && !errors.IsErrorCode(err, errors.ErrCodeStreamTransport) {
		util.Debugw("对话流提前结束", map[string]interface{}{
			"request_id": t.requestID,
			"state":      t.state.String(),
			"reason":     err.Error(),
		})
	}
	return nil
}

func (t *turn) run(history []llm.Message, body io.ReadCloser) error {
	r := t.relay

	t.transition(stateStreamingText)
	calls, err := t.consume(body, true)
	if err != nil {
		return err
	}
	// 首个流已经读完，尽早释放连接
	body.Close()

	if len(calls) > 0 {
		t.transition(stateExecutingTools)
		assistant := llm.Message{Role: llm.RoleAssistant, ToolCalls: make([]llm.ToolCall, 0, len(calls))}
		toolMessages := make([]llm.Message, 0, len(calls))

		for _, call := range calls {
			if err := t.ctx.Err(); err != nil {
				return err
			}
			result := r.executor.Execute(t.ctx, call)
			if err := t.emit(ToolInvocation{
				ToolCallID: result.ToolCallID,
				ToolName:   result.ToolName,
				Args:       result.Args,
				Result:     result.Output,
				Error:      result.Error,
			}); err != nil {
				return err
			}

			assistant.ToolCalls = append(assistant.ToolCalls, llm.ToolCall{
				ID:       call.ID,
				Type:     "function",
				Function: llm.FunctionCall{Name: call.Name, Arguments: string(result.Args)},
			})
			toolMessages = append(toolMessages, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				Content:    result.Content(),
			})
		}

		followup := make([]llm.Message, 0, len(history)+1+len(toolMessages))
		followup = append(followup, history...)
		followup = append(followup, assistant)
		followup = append(followup, toolMessages...)

		if err := t.followup(followup); err != nil {
			return err
		}
	}

	if err := t.emit(Annotations{}); err != nil {
		return err
	}
	if err := t.emit(Finish{Reason: FinishReasonStop}); err != nil {
		return err
	}
	t.transition(stateFinished)
	return nil
}

// followup 带工具结果的第二次请求。请求失败时输出兜底文本。
func (t *turn) followup(messages []llm.Message) error {
	r := t.relay

	t.transition(stateAwaitingFollowup)
	resp, err := r.completer.StreamChat(t.ctx, r.request(messages, false))
	if err != nil {
		if t.ctx.Err() != nil {
			return t.ctx.Err()
		}
		util.Warnw("后续请求失败，使用兜底文本", map[string]interface{}{
			"request_id": t.requestID,
			"error":      err.Error(),
			"error_code": errors.GetErrorCode(err),
		})
		return t.emit(TextDelta{Text: r.opts.FallbackText})
	}
	defer resp.Body.Close()

	t.transition(stateStreamingFollowup)
	_, err = t.consume(resp.Body, false)
	return err
}

// consume 读取一个上游流，文本立即输出，工具调用片段按 index 累积
func (t *turn) consume(body io.Reader, acceptTools bool) ([]tools.ToolCall, error) {
	reader := llm.NewStreamReader(body)
	acc := newToolCallAccumulator()

	for {
		if err := t.ctx.Err(); err != nil {
			return nil, err
		}

		delta, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, t.streamError(err)
		}
		if delta.Error != "" {
			return nil, t.streamError(errors.NewError(errors.ErrCodeStreamTransport, delta.Error))
		}

		if delta.Content != "" {
			if err := t.emit(TextDelta{Text: delta.Content}); err != nil {
				return nil, err
			}
		}
		if acceptTools {
			for _, frag := range delta.ToolCalls {
				acc.add(frag)
			}
		}
	}

	util.Debugw("上游流结束", map[string]interface{}{
		"request_id": t.requestID,
		"terminated": reader.Terminated(),
		"tool_calls": acc.len(),
	})
	return acc.list(t.relay.newID), nil
}

// pendingCall 正在累积的工具调用
type pendingCall struct {
	id   string
	name string
	args strings.Builder
}

// toolCallAccumulator 按 index 累积工具调用片段，保留首次出现的顺序
type toolCallAccumulator struct {
	order []int
	calls map[int]*pendingCall
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{calls: make(map[int]*pendingCall)}
}

func (a *toolCallAccumulator) add(frag llm.ToolCallFragment) {
	call, ok := a.calls[frag.Index]
	if !ok {
		call = &pendingCall{}
		a.calls[frag.Index] = call
		a.order = append(a.order, frag.Index)
	}
	if frag.ID != "" {
		call.id = frag.ID
	}
	if frag.Name != "" {
		call.name = frag.Name
	}
	call.args.WriteString(frag.Arguments)
}

func (a *toolCallAccumulator) len() int {
	return len(a.order)
}

// list 按发现顺序返回完整的调用，缺少 ID 时生成一个
func (a *toolCallAccumulator) list(newID func() string) []tools.ToolCall {
	if len(a.order) == 0 {
		return nil
	}
	out := make([]tools.ToolCall, 0, len(a.order))
	for _, idx := range a.order {
		c := a.calls[idx]
		id := c.id
		if id == "" {
			id = newID()
		}
		out = append(out, tools.ToolCall{ID: id, Name: c.name, Arguments: c.args.String()})
	}
	return out
}
