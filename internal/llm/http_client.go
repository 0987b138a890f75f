package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/util"
)

// HTTPClient HTTP 客户端接口
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AIHTTPClient AI 专用 HTTP 客户端
type AIHTTPClient struct {
	client  HTTPClient
	timeout time.Duration
	baseURL string
	headers map[string]string
	mapper  ErrorMapper
}

// NewAIHTTPClient 创建新的 AI HTTP 客户端。timeout 约束整个往返，包括读取流式响应体。
func NewAIHTTPClient(baseURL string, timeout time.Duration) *AIHTTPClient {
	return &AIHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
		baseURL: baseURL,
		headers: make(map[string]string),
		mapper:  NewDefaultErrorMapper(),
	}
}

// SetHeader 设置请求头
func (c *AIHTTPClient) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHTTPClient 替换底层客户端，测试时使用
func (c *AIHTTPClient) SetHTTPClient(client HTTPClient) {
	c.client = client
}

// SetErrorMapper 设置传输错误映射器
func (c *AIHTTPClient) SetErrorMapper(mapper ErrorMapper) {
	c.mapper = mapper
}

// Post 发送 POST 请求。非 2xx 响应会被读取并转换为 AppError，响应体在出错时已关闭。
func (c *AIHTTPClient) Post(ctx context.Context, endpoint string, payload interface{}) (*http.Response, error) {
	url := c.baseURL
	if endpoint != "" {
		url = strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	}

	var body io.Reader
	var jsonData []byte
	var err error

	if payload != nil {
		jsonData, err = json.Marshal(payload)
		if err != nil {
			return nil, errors.WrapError(errors.ErrCodeInvalidParameters, "failed to marshal request payload", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeInvalidParameters, "failed to create HTTP request", err)
	}

	// 设置默认请求头
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", "fleet-relay/1.0")

	// 设置自定义请求头
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	if util.DefaultLogger.Enabled(util.LogLevelDebug) {
		util.Debugw("发送 HTTP POST 请求", map[string]interface{}{
			"url":          url,
			"headers":      redactHeaders(req.Header),
			"body_preview": previewBody(jsonData),
			"body_len":     len(jsonData),
		})
	}

	resp, err := c.client.Do(req)
	if err != nil {
		util.Errorw("HTTP 请求失败", map[string]interface{}{"error": err, "url": url})
		return nil, c.mapper.MapError(err)
	}

	if err := c.handleHTTPError(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// redactHeaders 记录日志前对敏感请求头脱敏
func redactHeaders(header http.Header) map[string]string {
	headersMap := make(map[string]string, len(header))
	for name, values := range header {
		joined := strings.Join(values, ", ")
		switch strings.ToLower(name) {
		case "authorization":
			if strings.HasPrefix(joined, "Bearer ") {
				headersMap[name] = "Bearer ***"
			} else if joined != "" {
				headersMap[name] = "[REDACTED]"
			} else {
				headersMap[name] = ""
			}
		case "cookie", "set-cookie":
			if joined != "" {
				headersMap[name] = "[REDACTED]"
			} else {
				headersMap[name] = ""
			}
		default:
			headersMap[name] = joined
		}
	}
	return headersMap
}

// body 预览限长，避免泄露与过大日志
func previewBody(data []byte) string {
	const maxLogBody = 1024
	if len(data) > maxLogBody {
		return string(data[:maxLogBody]) + "...(truncated)"
	}
	return string(data)
}

// upstreamMessage 从上游错误响应体中提取 error.message
func upstreamMessage(body []byte, fallback string) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
			return msg.String()
		}
		if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
	}
	return fallback
}

// handleHTTPError 处理 HTTP 错误状态码，错误中保留上游状态码
func (c *AIHTTPClient) handleHTTPError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// 读取错误响应体
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return errors.WrapNetworkError(fmt.Sprintf("HTTP %d: failed to read error response", resp.StatusCode), err).
			WithStatus(resp.StatusCode)
	}

	// 记录错误响应
	fields := map[string]interface{}{
		"status": resp.Status,
		"body":   previewBody(body),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		fields["url"] = resp.Request.URL.String()
	}
	util.Warnw("HTTP 错误响应", fields)

	var appErr *errors.AppError
	switch resp.StatusCode {
	case http.StatusBadRequest:
		appErr = errors.NewErrorWithDetails(errors.ErrCodeInvalidParameters, upstreamMessage(body, "Bad Request"), string(body))
	case http.StatusUnauthorized:
		appErr = errors.NewErrorWithDetails(errors.ErrCodeUpstreamAuthFailed, upstreamMessage(body, "Unauthorized"), string(body))
	case http.StatusForbidden:
		appErr = errors.NewErrorWithDetails(errors.ErrCodeForbidden, upstreamMessage(body, "Forbidden"), string(body))
	case http.StatusNotFound:
		appErr = errors.NewErrorWithDetails(errors.ErrCodeModelNotSupported, upstreamMessage(body, "Not Found"), string(body))
	case http.StatusTooManyRequests:
		appErr = errors.NewErrorWithDetails(errors.ErrCodeRateLimited, upstreamMessage(body, "Rate Limited"), string(body))
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		appErr = errors.NewErrorWithDetails(errors.ErrCodeServiceUnavailable, upstreamMessage(body, "Server Error"), string(body))
	default:
		appErr = errors.NewErrorWithDetails(errors.ErrCodeAPIRequestFailed, upstreamMessage(body, fmt.Sprintf("HTTP %d", resp.StatusCode)), string(body))
	}
	return appErr.WithStatus(resp.StatusCode)
}
