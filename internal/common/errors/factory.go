package errors

// NewError 创建新的错误
func NewError(code, message string) *AppError {
	err := &AppError{
		Code:    code,
		Message: message,
	}
	return err.WithStack()
}

// NewErrorWithDetails 创建带详情的错误
func NewErrorWithDetails(code, message, details string) *AppError {
	err := &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
	return err.WithStack()
}

// WrapError 包装现有错误
func WrapError(code, message string, cause error) *AppError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}

	err := &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
	return err.WithStack()
}

// WrapErrorWithDetails 包装现有错误并添加详情
func WrapErrorWithDetails(code, message string, cause error, details string) *AppError {
	err := &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
	return err.WithStack()
}

// 预定义错误创建函数

// 配置错误
func NewConfigError(message string) *AppError {
	return NewError(ErrCodeConfigInvalid, message)
}

func WrapConfigError(message string, cause error) *AppError {
	return WrapError(ErrCodeConfigInvalid, message, cause)
}

// NewCredentialError 凭据缺失或仍为占位符
func NewCredentialError(details string) *AppError {
	return NewErrorWithDetails(ErrCodeAPIKeyMissing, "OpenAI API key not configured", details)
}

// 网络错误
func WrapNetworkError(message string, cause error) *AppError {
	return WrapError(ErrCodeNetworkFailed, message, cause)
}

// 流错误
func WrapStreamError(message string, cause error) *AppError {
	return WrapError(ErrCodeStreamTransport, message, cause)
}

// 工具错误
func NewToolErrorWithDetails(message, details string) *AppError {
	return NewErrorWithDetails(ErrCodeToolExecutionFailed, message, details)
}

func WrapToolError(message string, cause error) *AppError {
	return WrapError(ErrCodeToolExecutionFailed, message, cause)
}

// 参数错误
func NewInvalidParamError(message string) *AppError {
	return NewError(ErrCodeInvalidParam, message)
}

// 存储错误
func WrapStoreError(message string, cause error) *AppError {
	return WrapError(ErrCodeStoreFailed, message, cause)
}
