package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/mod"
)

// Recovery recovers from panics in later handlers, logs the stack and answers 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithFields(logger.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				}).Errorf("panic: %v, stack: %s", err, string(debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, mod.ResponseValue{Code: mod.ResponseCodeFailure, Msg: "服务器内部错误"})
			}
		}()
		c.Next()
	}
}
