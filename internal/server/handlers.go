package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/relay"
	"fleet-relay/internal/util"
)

type chatRequest struct {
	Messages []relay.Message `json:"messages"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.WrapError(errors.ErrCodeInvalidParam, "请求体不是有效的 JSON", err))
		return
	}

	sink := newResponseSink(c.Writer)
	err := s.relay.Handle(c.Request.Context(), req.Messages, sink)
	if err == nil {
		return
	}
	if sink.Started() {
		// 响应头已发出，错误已写入流中
		return
	}
	writeError(c, err)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError 在输出开始前同步返回错误
func writeError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	body := gin.H{"error": err.Error()}
	if appErr, ok := errors.AsAppError(err); ok {
		body["error"] = appErr.Message
		body["code"] = appErr.Code
	}

	util.LogErrorWithFields(err, "对话请求失败", map[string]interface{}{
		"request_id": c.GetString(requestIDKey),
		"status":     status,
	})
	c.AbortWithStatusJSON(status, body)
}

// responseSink 把中继事件写入 HTTP 响应，Begin 时才提交响应头
type responseSink struct {
	w gin.ResponseWriter
	*relay.WriterSink
}

func newResponseSink(w gin.ResponseWriter) *responseSink {
	return &responseSink{w: w, WriterSink: relay.NewWriterSink(w)}
}

func (s *responseSink) Begin() error {
	h := s.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set(relay.DataStreamHeader, relay.DataStreamVersion)
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.w.WriteHeaderNow()
	s.w.Flush()
	return s.WriterSink.Begin()
}
