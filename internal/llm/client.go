package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/config"
)

// Client OpenAI 兼容的流式对话客户端
type Client struct {
	httpClient *AIHTTPClient
	model      string
}

// chatEndpoint 规范化 base URL：已包含 /chat/completions 时直接使用
func chatEndpoint(baseURL string) string {
	raw := strings.TrimRight(baseURL, "/")
	if raw == "" {
		return config.DefaultBaseURL + "/chat/completions"
	}
	if strings.Contains(strings.ToLower(raw), "/chat/completions") {
		return raw
	}
	return raw + "/chat/completions"
}

// NewClient 根据配置创建客户端。密钥在每次请求前由调用方校验，这里不拒绝空密钥。
func NewClient(cfg config.AIConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultTimeout * time.Second
	}

	httpClient := NewAIHTTPClient(chatEndpoint(cfg.BaseURL), timeout)
	httpClient.SetErrorMapper(CreateErrorMapperForProvider(cfg.Type))
	if cfg.APIKey != "" {
		httpClient.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}

	return &Client{httpClient: httpClient, model: model}
}

// HTTPClient 返回底层 HTTP 客户端
func (c *Client) HTTPClient() *AIHTTPClient {
	return c.httpClient
}

// Model 默认模型名称
func (c *Client) Model() string {
	return c.model
}

// StreamChat 发起流式对话请求，成功时返回尚未读取的响应，调用方负责关闭 Body
func (c *Client) StreamChat(ctx context.Context, req ChatRequest) (*http.Response, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	if len(req.Messages) == 0 {
		return nil, errors.NewError(errors.ErrCodeInvalidParam, "messages 不能为空")
	}
	req.Stream = true

	return c.httpClient.Post(ctx, "", req)
}
