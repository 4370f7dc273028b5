package servehttp

import (
	"net/http"
	"shipflow/indices/search"
	"shipflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterRequestSearchHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/request-search", middleWares...)
	g.GET("", handleSearchRequests)
}

func handleSearchRequests(c *gin.Context) {
	query := search.RequestSearchQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	details, err := search.SearchRequestsFunc(query, session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, details)
}
