package servehttp

import (
	"net/http"
	"shipflow/domain/flow"

	"github.com/gin-gonic/gin"
)

func RegisterStagesHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/stages", middleWares...)
	g.GET("", handleQueryStages)
}

func handleQueryStages(c *gin.Context) {
	c.JSON(http.StatusOK, flow.ActiveCatalog.Stages)
}
