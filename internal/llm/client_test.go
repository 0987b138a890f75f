package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "fleet-relay/internal/common/errors"
	"fleet-relay/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.AIConfig{
		Type:    "openai",
		APIKey:  "sk-test-123456789",
		BaseURL: url,
		Model:   "gpt-test",
		Timeout: 5,
	})
}

func TestChatEndpoint(t *testing.T) {
	testCases := map[string]string{
		"":                                  "https://api.openai.com/v1/chat/completions",
		"https://api.openai.com/v1":         "https://api.openai.com/v1/chat/completions",
		"https://api.openai.com/v1/":        "https://api.openai.com/v1/chat/completions",
		"http://proxy/v1/chat/completions":  "http://proxy/v1/chat/completions",
		"http://proxy/v1/chat/completions/": "http://proxy/v1/chat/completions",
	}
	for input, want := range testCases {
		if got := chatEndpoint(input); got != want {
			t.Errorf("chatEndpoint(%q) = %q，期望 %q", input, got, want)
		}
	}
}

func TestClient_StreamChat(t *testing.T) {
	var received ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("请求路径不正确: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test-123456789" {
			t.Errorf("鉴权头不正确: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("请求体解析失败: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\ndata: [DONE]\n\n")
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/v1")
	resp, err := client.StreamChat(context.Background(), ChatRequest{
		Messages:    []Message{{Role: RoleUser, Content: "hello"}},
		Temperature: 0.7,
		MaxTokens:   1000,
		ToolChoice:  "auto",
	})
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	if !received.Stream {
		t.Error("请求应设置 stream=true")
	}
	if received.Model != "gpt-test" {
		t.Errorf("期望使用默认模型 'gpt-test'，实际为 '%s'", received.Model)
	}
	if received.MaxTokens != 1000 || received.ToolChoice != "auto" {
		t.Errorf("请求参数不正确: %+v", received)
	}

	d, err := NewStreamReader(resp.Body).Next()
	if err != nil || d.Content != "ok" {
		t.Errorf("读取流失败: %+v, %v", d, err)
	}
}

func TestClient_StreamChat_HTTPErrors(t *testing.T) {
	testCases := []struct {
		status  int
		body    string
		code    string
		message string
	}{
		{http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`, apperrors.ErrCodeRateLimited, "Rate limit reached"},
		{http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, apperrors.ErrCodeUpstreamAuthFailed, "Incorrect API key provided"},
		{http.StatusBadRequest, `not json`, apperrors.ErrCodeInvalidParameters, "Bad Request"},
		{http.StatusServiceUnavailable, `{}`, apperrors.ErrCodeServiceUnavailable, "Server Error"},
		{http.StatusTeapot, `{"error":"short and stout"}`, apperrors.ErrCodeAPIRequestFailed, "short and stout"},
	}

	for _, tc := range testCases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			io.WriteString(w, tc.body)
		}))

		_, err := newTestClient(server.URL).StreamChat(context.Background(), ChatRequest{
			Messages: []Message{{Role: RoleUser, Content: "hello"}},
		})
		server.Close()

		if err == nil {
			t.Errorf("状态码 %d 应该返回错误", tc.status)
			continue
		}
		appErr, ok := apperrors.AsAppError(err)
		if !ok {
			t.Errorf("状态码 %d 期望返回 AppError，实际为 %T", tc.status, err)
			continue
		}
		if appErr.Code != tc.code {
			t.Errorf("状态码 %d 期望错误代码为 %s，实际为 %s", tc.status, tc.code, appErr.Code)
		}
		if appErr.Message != tc.message {
			t.Errorf("状态码 %d 期望消息为 %q，实际为 %q", tc.status, tc.message, appErr.Message)
		}
		if apperrors.HTTPStatus(err) != tc.status {
			t.Errorf("期望透传状态码 %d，实际为 %d", tc.status, apperrors.HTTPStatus(err))
		}
	}
}

func TestClient_StreamChat_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).StreamChat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if !apperrors.IsErrorCode(err, apperrors.ErrCodeNetworkFailed) {
		t.Errorf("期望错误代码为 %s，实际为 %s (%v)", apperrors.ErrCodeNetworkFailed, apperrors.GetErrorCode(err), err)
	}
}

func TestClient_StreamChat_EmptyMessages(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").StreamChat(context.Background(), ChatRequest{})
	if !apperrors.IsErrorCode(err, apperrors.ErrCodeInvalidParam) {
		t.Errorf("期望错误代码为 %s，实际为 %s", apperrors.ErrCodeInvalidParam, apperrors.GetErrorCode(err))
	}
}

func TestRedactHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("Authorization", "Bearer sk-secret")
	header.Set("Cookie", "session=1")
	header.Set("Content-Type", "application/json")

	redacted := redactHeaders(header)
	if redacted["Authorization"] != "Bearer ***" {
		t.Errorf("Authorization 未脱敏: %s", redacted["Authorization"])
	}
	if redacted["Cookie"] != "[REDACTED]" {
		t.Errorf("Cookie 未脱敏: %s", redacted["Cookie"])
	}
	if strings.Contains(fmt.Sprint(redacted), "sk-secret") {
		t.Error("日志中不应出现密钥")
	}
}

func TestErrorMapper(t *testing.T) {
	mapper := CreateErrorMapperForProvider("openai")

	testCases := []struct {
		err  error
		code string
	}{
		{context.Canceled, apperrors.ErrCodeContextCanceled},
		{fmt.Errorf("dial: %w", context.DeadlineExceeded), apperrors.ErrCodeTimeout},
		{errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), apperrors.ErrCodeNetworkFailed},
		{errors.New("insufficient_quota"), apperrors.ErrCodeRateLimited},
		{errors.New("something odd"), apperrors.ErrCodeNetworkFailed},
	}
	for _, tc := range testCases {
		if got := apperrors.GetErrorCode(mapper.MapError(tc.err)); got != tc.code {
			t.Errorf("MapError(%v) = %s，期望 %s", tc.err, got, tc.code)
		}
	}

	appErr := apperrors.NewError(apperrors.ErrCodeRateLimited, "已是 AppError")
	if mapper.MapError(appErr) != error(appErr) {
		t.Error("AppError 应该原样返回")
	}
	if mapper.MapError(nil) != nil {
		t.Error("nil 应该返回 nil")
	}
}
