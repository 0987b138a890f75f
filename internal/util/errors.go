package util

import (
	"fmt"

	"fleet-relay/internal/common/errors"
)

// 错误代码常量 - 指向通用错误处理系统中的错误代码，方便各包只引入 util
const (
	ErrCodeConfigInvalid       = errors.ErrCodeConfigInvalid       // 配置文件无效
	ErrCodeAPIKeyMissing       = errors.ErrCodeAPIKeyMissing       // API密钥缺失
	ErrCodeNetworkFailed       = errors.ErrCodeNetworkFailed       // 网络请求失败
	ErrCodeToolNotFound        = errors.ErrCodeToolNotFound        // 工具未找到
	ErrCodeToolExecutionFailed = errors.ErrCodeToolExecutionFailed // 工具执行失败
	ErrCodeInvalidParam        = errors.ErrCodeInvalidParam        // 无效参数
	ErrCodeInternalErr         = errors.ErrCodeInternalErr         // 内部错误
	ErrCodeStoreFailed         = errors.ErrCodeStoreFailed         // 查询引擎错误
)

// AppError 应用错误结构 - 使用通用错误处理系统中的AppError
type AppError = errors.AppError

// 创建新的应用错误
func NewError(code, message string) *AppError {
	return errors.NewError(code, message)
}

// 创建带详情的应用错误
func NewErrorWithDetail(code, message, details string) *AppError {
	return errors.NewErrorWithDetails(code, message, details)
}

// 包装现有错误
func WrapError(code, message string, cause error) *AppError {
	return errors.WrapError(code, message, cause)
}

// AsAppError 在错误链中查找 AppError
func AsAppError(err error) (*AppError, bool) {
	return errors.AsAppError(err)
}

// 检查错误是否为指定类型
func IsErrorCode(err error, code string) bool {
	return errors.IsErrorCode(err, code)
}

// 获取错误代码
func GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}

// 获取用户友好的错误消息
func GetUserFriendlyMessage(err error) string {
	return errors.GetUserFriendlyMessage(err)
}

// NewToolNotFoundError 创建工具未找到错误。消息即为对外展示的 "Unknown tool: <name>"。
func NewToolNotFoundError(toolName string) *AppError {
	return errors.NewErrorWithDetails(errors.ErrCodeToolNotFound,
		fmt.Sprintf("Unknown tool: %s", toolName),
		fmt.Sprintf("工具名称: %s", toolName))
}

// NewToolExecutionError 创建工具执行错误
func NewToolExecutionError(toolName string, cause error) *AppError {
	return errors.WrapToolError(fmt.Sprintf("工具 %s 执行失败", toolName), cause).
		WithDetails(fmt.Sprintf("工具名称: %s", toolName))
}

// RegisterErrorReporter 将通用错误处理器的上报接到默认日志器
func RegisterErrorReporter() {
	errors.DefaultHandler.SetReporter(func(appErr *AppError) {
		LogError(appErr, appErr.Message)
	})
}
