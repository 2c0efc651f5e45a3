package middleware

import (
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/data"
)

// Log tags every request with an id and writes one logrus entry for it once
// handled. 5xx answers log at error level and 4xx at warn.
func Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(data.RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Header(data.RequestIdHeader, requestId)

		start := time.Now()
		c.Next()
		latency := int(math.Ceil(float64(time.Since(start).Nanoseconds()) / 1000.0))

		statusCode := c.Writer.Status()
		dataLength := c.Writer.Size()
		if dataLength < 0 {
			dataLength = 0
		}
		fields := logger.Fields{
			"requestId":  requestId,
			"statusCode": statusCode,
			"latency":    latency, // microseconds
			"clientIp":   c.ClientIP(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"dataLength": dataLength,
			"userAgent":  c.Request.UserAgent(),
		}
		if bin := c.Param("bin"); bin != "" {
			fields["bin"] = bin
		}
		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
			return
		}
		msg := fmt.Sprintf("%s %s", c.Request.Method, c.FullPath())
		switch {
		case statusCode > 499:
			entry.Error(msg)
		case statusCode > 399:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}
