package route

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/bdata"
	"git.thinkinpower.net/cardbin/metrics"
	"git.thinkinpower.net/cardbin/mod"
)

func binQuery(ctx *gin.Context) {
	var (
		lookup *mod.BinLookup
		err    error
	)
	bin := ctx.Param("bin")
	if lookup, err = bdata.Query(bin); err != nil {
		switch errors.Cause(err) {
		case bdata.ErrInvalidBin:
			metrics.ObserveQuery(metrics.QueryInvalid)
			ctx.JSON(http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeInvalidParams, Msg: "非法参数"})
		case bdata.ErrNotFound:
			metrics.ObserveQuery(metrics.QueryNotFound)
			ctx.JSON(http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeNotFound, Msg: "数据不存在"})
		default:
			logger.WithField("bin", bin).Errorf("query bin error: %s", err)
			ctx.JSON(http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeFailure, Msg: "失败"})
		}
		return
	}
	metrics.ObserveQuery(metrics.QueryFound)
	ctx.JSON(http.StatusOK, mod.ResponseData{ResponseValue: mod.ResponseValue{Code: mod.ResponseCodeSuccess, Msg: "成功"}, Data: lookup})
}
