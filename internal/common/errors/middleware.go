package errors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecoveryMiddleware gin 错误处理中间件，捕获 handler 中的 panic
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				var appErr *AppError
				switch e := rec.(type) {
				case *AppError:
					appErr = e
				case error:
					appErr = WrapError(ErrCodeSystemError, "系统发生panic", e)
				default:
					appErr = NewErrorWithDetails(ErrCodeSystemError, "系统发生panic", fmt.Sprint(e))
				}

				DefaultHandler.HandleError(appErr)

				// 流已经开始时响应头已提交，只能中断连接
				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(getHTTPStatus(appErr.Code), gin.H{
					"error": DefaultHandler.GetUserFriendlyMessage(appErr),
					"code":  appErr.Code,
				})
			}
		}()

		c.Next()
	}
}

// getHTTPStatus 根据错误代码获取HTTP状态码
func getHTTPStatus(code string) int {
	switch code {
	// 客户端错误
	case ErrCodeInvalidParam:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeContextCanceled:
		return 499

	// 服务端错误
	case ErrCodeSystemError, ErrCodeInternalErr, ErrCodeInitializationFailed:
		return http.StatusInternalServerError
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeConfigLoadFailed, ErrCodeConfigParseFailed:
		return http.StatusInternalServerError
	case ErrCodeAPIKeyMissing:
		return http.StatusInternalServerError

	// 上游错误
	case ErrCodeNetworkFailed, ErrCodeAPIRequestFailed, ErrCodeUpstreamAuthFailed, ErrCodeForbidden:
		return http.StatusBadGateway
	case ErrCodeInvalidResponse, ErrCodeInvalidParameters, ErrCodeModelNotSupported:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable

	// 工具与存储
	case ErrCodeToolNotFound:
		return http.StatusNotFound
	case ErrCodeToolExecutionFailed, ErrCodeStoreFailed:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
