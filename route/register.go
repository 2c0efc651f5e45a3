package route

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"git.thinkinpower.net/cardbin/data"
	"git.thinkinpower.net/cardbin/metrics"
)

func Register(r *gin.Engine) {
	g := r.Group("/bindb")
	{
		g.GET("/index", func(context *gin.Context) {
			context.String(http.StatusOK, "Hello bindb, date: %s", time.Now().Format(data.DateTimePattern))
		})

		g.GET("/query/:bin", binQuery)
		g.POST("/feedback/:bin", feedback)
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
