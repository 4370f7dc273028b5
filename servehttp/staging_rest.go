package servehttp

import (
	"net/http"
	"shipflow/bizerror"
	"shipflow/common"
	"shipflow/documents"
	"shipflow/domain"
	"shipflow/domain/stage"
	"shipflow/domain/staging"
	"shipflow/session"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterStagingHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/requests/:id/staging-documents", middleWares...)

	g.POST("", handleStageDocument)
	g.GET("", handleListStagedDocuments)
	g.DELETE(":index", handleUnstageDocument)
}

func handleStageDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	docType := stage.DocumentType(c.PostForm("type"))
	if !stage.IsValidDocumentType(docType) {
		_ = c.Error(bizerror.ErrUnknownDocumentType)
		c.Abort()
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	src, err := file.Open()
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	defer src.Close()

	sec := session.FindSecurityContext(c)
	key, err := documents.UploadDocumentFunc(id, file.Filename, src, sec)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	staged, err := staging.StageDocumentFunc(sec.Token, id, domain.DocumentSubmission{
		Type:          docType,
		FileReference: key,
		FileName:      file.Filename,
	})
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, staged)
}

func handleListStagedDocuments(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	sec := session.FindSecurityContext(c)
	c.JSON(http.StatusOK, staging.ListStagedFunc(sec.Token, id))
}

func handleUnstageDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid index '" + c.Param("index") + "'"})
		return
	}

	sec := session.FindSecurityContext(c)
	staged, err := staging.UnstageDocumentFunc(sec.Token, id, index)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, staged)
}
