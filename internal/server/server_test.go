package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/config"
	"fleet-relay/internal/fleet"
	"fleet-relay/internal/llm"
	"fleet-relay/internal/relay"
	"fleet-relay/internal/tools"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer 创建连接到模拟上游的服务，upstream 为 nil 时上游不可用
func newTestServer(t *testing.T, upstream http.HandlerFunc, apiKey string) *Server {
	t.Helper()

	baseURL := "http://127.0.0.1:1"
	if upstream != nil {
		provider := httptest.NewServer(upstream)
		t.Cleanup(provider.Close)
		baseURL = provider.URL
	}

	aiCfg := config.AIConfig{Type: "openai", APIKey: apiKey, BaseURL: baseURL, Model: "gpt-test", Timeout: 5}
	manager, err := tools.NewBuiltinManager(fleet.NewMemoryStore(fleet.DefaultFixtures()))
	if err != nil {
		t.Fatalf("创建工具管理器失败: %v", err)
	}

	r := relay.New(llm.NewClient(aiCfg), manager, relay.Options{
		Model:        "gpt-test",
		FallbackText: config.DefaultFallbackText,
	}, aiCfg.CheckCredential)

	return New(r, Options{
		Model:                "gpt-test",
		StoreEngine:          fleet.EngineMemory,
		CredentialConfigured: aiCfg.CredentialConfigured,
	})
}

func sseText(parts ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range parts {
			b, _ := json.Marshal(map[string]any{
				"choices": []any{map[string]any{"delta": map[string]any{"content": p}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func postChat(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestChat_Streams(t *testing.T) {
	s := newTestServer(t, sseText("Hi", " there"), "sk-test-123456789")

	w := postChat(s, `{"messages":[{"role":"user","content":"hello"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d，期望 200: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("x-vercel-ai-data-stream"); got != "v1" {
		t.Errorf("数据流头 = %q，期望 v1", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS 头 = %q，期望 *", got)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("缺少请求 ID 头")
	}

	want := "0:\"Hi\"\n0:\" there\"\n8:[]\nd:{\"finishReason\":\"stop\",\"usage\":{\"promptTokens\":0,\"completionTokens\":0}}\n"
	if w.Body.String() != want {
		t.Errorf("响应体:\n%s\n期望:\n%s", w.Body.String(), want)
	}
}

func TestChat_UpstreamRateLimited(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached"}}`)
	}, "sk-test-123456789")

	w := postChat(s, `{"messages":[{"role":"user","content":"hello"}]}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("状态码 = %d，期望 429", w.Code)
	}
	if w.Header().Get("x-vercel-ai-data-stream") != "" {
		t.Error("错误响应不应带数据流头")
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("错误响应不是 JSON: %v", err)
	}
	if body["error"] != "Rate limit reached" {
		t.Errorf("error = %q", body["error"])
	}
	if body["code"] != errors.ErrCodeRateLimited {
		t.Errorf("code = %q", body["code"])
	}
}

func TestChat_CredentialMissing(t *testing.T) {
	called := false
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "your_openai_api_key_here")

	w := postChat(s, `{"messages":[{"role":"user","content":"hello"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("状态码 = %d，期望 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "OpenAI API key not configured") {
		t.Errorf("响应体 = %s", w.Body.String())
	}
	if called {
		t.Error("凭据缺失时不应请求上游")
	}
}

func TestChat_BadRequests(t *testing.T) {
	s := newTestServer(t, nil, "sk-test-123456789")

	testCases := map[string]string{
		"invalid json":   `{"messages":`,
		"empty messages": `{"messages":[]}`,
		"missing field":  `{}`,
		"unknown role":   `{"messages":[{"role":"robot","content":"x"}]}`,
	}
	for name, body := range testCases {
		w := postChat(s, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: 状态码 = %d，期望 400", name, w.Code)
		}
	}
}

func TestChat_UpstreamUnreachable(t *testing.T) {
	s := newTestServer(t, nil, "sk-test-123456789")

	w := postChat(s, `{"messages":[{"role":"user","content":"hello"}]}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("状态码 = %d，期望 502: %s", w.Code, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, "")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应不是 JSON: %v", err)
	}
	if body["status"] != "OK" || body["timestamp"] == "" {
		t.Errorf("响应体 = %v", body)
	}
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, nil, "")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", w.Code)
	}

	var body statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应不是 JSON: %v", err)
	}
	if body.Model != "gpt-test" || body.StoreEngine != fleet.EngineMemory {
		t.Errorf("响应体 = %+v", body)
	}
	if body.CredentialConfigured {
		t.Error("未配置密钥时应为 false")
	}
	if body.Runtime.Goroutines <= 0 {
		t.Error("goroutine 数量应大于 0")
	}
	if strings.Contains(w.Body.String(), "sk-") {
		t.Error("状态接口不应包含密钥")
	}
}

func TestOptionsAlwaysOK(t *testing.T) {
	s := newTestServer(t, nil, "")

	for _, path := range []string{"/api/chat", "/api/health", "/anything"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("OPTIONS %s 状态码 = %d，期望 200", path, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("OPTIONS %s 不应有响应体", path)
		}
		if w.Header().Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" {
			t.Errorf("OPTIONS %s 缺少 CORS 方法头", path)
		}
	}
}
