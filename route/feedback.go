package route

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/bdata"
	"git.thinkinpower.net/cardbin/mod"
)

//bindata feedback, adds a network record for the bin
func feedback(ctx *gin.Context) {
	var record mod.BinRecord
	if err := ctx.ShouldBindJSON(&record); err != nil {
		logger.Error(err)
		ctx.JSON(http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeMissingParams, Msg: "无法解析request body"})
		return
	}
	//判断入参是否合法
	if !verifyBinRecord(record) {
		ctx.JSON(http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeInvalidParams, Msg: "非法参数"})
		return
	}
	if err := bdata.CreateBinData(ctx.Param("bin"), record); err != nil {
		if errors.Cause(err) == bdata.ErrInvalidBin {
			ctx.JSON(http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeInvalidParams, Msg: "非法参数"})
			return
		}
		logger.Error(err)
		ctx.JSON(http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeFailure, Msg: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, mod.ResponseValue{Code: mod.ResponseCodeSuccess, Msg: "成功"})
}

func verifyBinRecord(record mod.BinRecord) bool {
	return mod.ParseCardNetwork(record.Schema).IsKnown()
}
