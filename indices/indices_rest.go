package indices

import (
	"net/http"
	"shipflow/common"
	"shipflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests        = "/v1/index-requests"
	PathPendingIndexRecovery = "/v1/index-log-recoveries"
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)
	g.GET("/:id", handleDetailIndexedRequest)

	rec := r.Group(PathPendingIndexRecovery, middleWares...)
	rec.POST("", handleCreatePendingIndexLogsRecovery)
}

func handleIndexRequest(c *gin.Context) {
	success, err := ScheduleNewSyncRunFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": success})
}

func handleDetailIndexedRequest(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	source, err := IndexedRequestDocumentFunc(c.Request.Context(), id, session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(source))
}

func handleCreatePendingIndexLogsRecovery(c *gin.Context) {
	if !indexLogRecoveryLimiter.Allow() {
		c.JSON(http.StatusOK, gin.H{"result": "request rate limited"})
		return
	}
	if err := IndexlogRecoveryRoutineFunc(session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"result": "started"})
}
