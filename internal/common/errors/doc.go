// Package errors 提供统一的错误处理系统
//
// 这个包实现了一个简化的错误处理框架，包括：
// - 统一的错误代码定义
// - 基本的错误创建方法
// - 错误处理器与错误码到 HTTP 状态码的映射
// - gin 错误恢复中间件
//
// 基本用法：
//
//  1. 创建错误：
//     err := errors.NewError(errors.ErrCodeConfigNotFound, "配置文件未找到")
//     wrappedErr := errors.WrapError(errors.ErrCodeConfigInvalid, "配置文件无效", originalErr)
//
//  2. 上游错误携带状态码：
//     err := errors.NewErrorWithDetails(errors.ErrCodeRateLimited, "Rate Limited", body).WithStatus(429)
//     status := errors.HTTPStatus(err) // 429
//
//  3. 检查错误类型：
//     if errors.IsErrorCode(err, errors.ErrCodeAPIKeyMissing) {
//     // 凭据未配置
//     }
//
//  4. 使用中间件：
//     engine.Use(errors.RecoveryMiddleware())
package errors
