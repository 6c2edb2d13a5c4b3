package api

import (
	"net/http"

	"BetX/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "Internal server error"

// statusFor 错误类型 -> HTTP 状态码
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError 统一错误响应：{success:false, message, error?}
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(apperr.KindOf(err))
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("请求处理失败")
		body := gin.H{"success": false, "message": internalErrorMessage}
		if gin.Mode() != gin.ReleaseMode {
			body["error"] = err.Error()
		}
		c.JSON(status, body)
		return
	}
	c.JSON(status, gin.H{"success": false, "message": apperr.MessageOf(err)})
}

// errorWriter 供中间件使用的错误响应
func errorWriter(logger *logrus.Logger) func(c *gin.Context, err error) {
	return func(c *gin.Context, err error) {
		respondError(c, logger, err)
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}
