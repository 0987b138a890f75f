package errors

import "net/http"

// Reporter 接收经过规整的错误，通常由日志系统注册
type Reporter func(appErr *AppError)

// DefaultErrorHandler 默认错误处理器实现
type DefaultErrorHandler struct {
	reporter Reporter
}

// SetReporter 设置错误上报函数
func (h *DefaultErrorHandler) SetReporter(r Reporter) {
	h.reporter = r
}

// HandleError 处理错误
func (h *DefaultErrorHandler) HandleError(err error) {
	if err == nil {
		return
	}

	appErr, ok := AsAppError(err)
	if !ok {
		// 如果不是AppError，包装一下
		appErr = WrapError(ErrCodeInternalErr, "未知错误", err)
	}

	if h.reporter != nil {
		h.reporter(appErr)
	}
}

// GetUserFriendlyMessage 获取用户友好的错误消息
func (h *DefaultErrorHandler) GetUserFriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	appErr, ok := AsAppError(err)
	if !ok {
		return "发生未知错误"
	}

	switch appErr.Code {
	case ErrCodeSystemError, ErrCodeInternalErr:
		return "系统错误，请联系技术支持"
	case ErrCodeInitializationFailed:
		return "应用程序初始化失败，请检查配置"
	case ErrCodeNotFound:
		return "请求的资源不存在"
	case ErrCodeInvalidParam:
		return "参数无效，请检查输入"

	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeConfigLoadFailed, ErrCodeConfigParseFailed:
		return "配置文件错误，请检查配置文件"

	case ErrCodeNetworkFailed, ErrCodeAPIRequestFailed:
		return "网络请求失败，请检查网络连接"
	case ErrCodeTimeout:
		return "请求超时，请稍后重试"
	case ErrCodeRateLimited:
		return "请求频率过高，请稍后重试"
	case ErrCodeForbidden:
		return "访问被拒绝，请检查权限设置"
	case ErrCodeServiceUnavailable:
		return "服务暂时不可用，请稍后重试"

	case ErrCodeAPIKeyMissing:
		return "API密钥未配置，请在配置文件或环境变量中设置"
	case ErrCodeUpstreamAuthFailed:
		return "上游服务鉴权失败，请检查API密钥"
	case ErrCodeInvalidResponse, ErrCodeStreamTransport:
		return "AI服务响应错误，请稍后重试"
	case ErrCodeInvalidParameters, ErrCodeModelNotSupported:
		return "AI请求参数无效，请检查模型配置"
	case ErrCodeContextCanceled:
		return "请求被取消，请重试"

	case ErrCodeToolNotFound:
		return "请求的工具不存在，请检查工具名称"
	case ErrCodeToolExecutionFailed:
		return "工具执行失败，请检查参数和输入"
	case ErrCodeStoreFailed:
		return "数据查询失败，请稍后重试"

	default:
		return appErr.Message
	}
}

// HTTPStatus 根据错误获取对外的 HTTP 状态码。
// 上游返回过状态码的错误原样透传（例如 429）。
func HTTPStatus(err error) int {
	appErr, ok := AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if appErr.Status >= 400 && appErr.Status <= 599 {
		return appErr.Status
	}
	return getHTTPStatus(appErr.Code)
}

// 默认错误处理器实例
var DefaultHandler = &DefaultErrorHandler{}

// HandleError 处理错误
func HandleError(err error) {
	DefaultHandler.HandleError(err)
}

// GetUserFriendlyMessage 获取用户友好的错误消息
func GetUserFriendlyMessage(err error) string {
	return DefaultHandler.GetUserFriendlyMessage(err)
}
