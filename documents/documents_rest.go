package documents

import (
	"net/http"
	"shipflow/session"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	PathDocuments = "/v1/documents"
)

func RegisterDocumentsAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDocuments, middleWares...)
	g.GET("/*key", HandleGetDocument)
}

func HandleGetDocument(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	bytes, err := DetailDocumentFunc(key, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}

	c.Data(http.StatusOK, "application/octet-stream", bytes)
}
