package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestFactories_Codes(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")

	testCases := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"配置错误", NewConfigError("logging.file 为空"), ErrCodeConfigInvalid, http.StatusInternalServerError},
		{"包装配置错误", WrapConfigError("配置加载失败", cause), ErrCodeConfigInvalid, http.StatusInternalServerError},
		{"网络错误", WrapNetworkError("HTTP request failed", cause), ErrCodeNetworkFailed, http.StatusBadGateway},
		{"工具错误", WrapToolError("工具执行失败", cause), ErrCodeToolExecutionFailed, http.StatusInternalServerError},
		{"凭据缺失", NewCredentialError("OPENAI_API_KEY"), ErrCodeAPIKeyMissing, http.StatusInternalServerError},
		{"参数错误", NewInvalidParamError("messages 不能为空"), ErrCodeInvalidParam, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("错误代码 = %s，期望 %s", tc.err.Code, tc.code)
			}
			if got := HTTPStatus(tc.err); got != tc.status {
				t.Errorf("HTTP 状态码 = %d，期望 %d", got, tc.status)
			}
			if tc.err.Stack == "" {
				t.Error("应记录堆栈")
			}
		})
	}
}

func TestWrapFactories_KeepCause(t *testing.T) {
	cause := stderrors.New("read: connection reset by peer")

	for _, err := range []*AppError{
		WrapConfigError("配置加载失败", cause),
		WrapNetworkError("HTTP request failed", cause),
		WrapToolError("工具执行失败", cause),
		WrapStreamError("流读取中断", cause),
	} {
		if !stderrors.Is(err, cause) {
			t.Errorf("%s 应保留原始错误", err.Code)
		}
		if err.Details != cause.Error() {
			t.Errorf("%s 详情 = %q，期望 %q", err.Code, err.Details, cause.Error())
		}
	}
}
