package servehttp

import (
	"net/http"
	"shipflow/bizerror"
	"shipflow/common"
	"shipflow/domain"
	"shipflow/domain/flow"
	"shipflow/event"
	"shipflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterRequestsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/requests", middleWares...)

	handler := &requestsHandler{
		validator: validator.New(),
	}

	g.POST("", handler.handleCreateRequest)
	g.GET("", handler.handleQueryRequests)
	g.GET(":id", handler.handleDetailRequest)

	g.POST(":id/advances", handler.handleAdvanceStage)
	g.POST(":id/rejections", handler.handleRejectStage)
	g.PUT(":id/records/:recordId", handler.handleAmendStageRecord)

	g.GET(":id/events", handler.handleQueryRequestEvents)
}

type requestsHandler struct {
	validator *validator.Validate
}

func (h *requestsHandler) handleCreateRequest(c *gin.Context) {
	creation := domain.RequestCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err = h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := flow.CreateRequestFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *requestsHandler) handleQueryRequests(c *gin.Context) {
	query := domain.RequestQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	requests, err := flow.QueryRequestsFunc(&query, session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *requestsHandler) handleDetailRequest(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	detail, err := flow.DetailRequestFunc(id, session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *requestsHandler) handleAdvanceStage(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	advancing := domain.StageAdvancing{}
	err = c.ShouldBindBodyWith(&advancing, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err = h.validator.Struct(advancing); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := flow.AdvanceStageFunc(id, &advancing, session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *requestsHandler) handleRejectStage(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	rejecting := domain.StageRejecting{}
	err = c.ShouldBindBodyWith(&rejecting, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err = h.validator.Struct(rejecting); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := flow.RejectStageFunc(id, &rejecting, session.FindSecurityContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *requestsHandler) handleAmendStageRecord(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}
	recordID, err := types.ParseID(c.Param("recordId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("recordId") + "'"})
		return
	}

	amending := domain.RecordAmending{}
	err = c.ShouldBindBodyWith(&amending, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err = h.validator.Struct(amending); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := flow.AmendStageRecordFunc(id, recordID, &amending, session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *requestsHandler) handleQueryRequestEvents(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	records, err := event.QuerySourceEventsFunc(flow.SourceTypeWorkflowRequest, id, session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, records)
}
