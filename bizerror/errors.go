package bizerror

import (
	"errors"
	"net/http"
	"shipflow/common"
	"shipflow/domain/stage"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPassword = errors.New("invalid password")

	ErrInvalidTransition   = errors.New("invalid transition")
	ErrStageInvalid        = errors.New("stage invalid")
	ErrStageConflict       = errors.New("stage conflict")
	ErrUnknownDocumentType = errors.New("unknown document type")
)

type ErrBadParam = common.ErrBadParam

// ErrGatingUnsatisfied is raised when a stage advance is attempted while at
// least one required document category has no staged document.
type ErrGatingUnsatisfied struct {
	Missing []stage.DocumentType
}

func (e *ErrGatingUnsatisfied) Error() string {
	return "workflow.gating_unsatisfied"
}

func (e *ErrGatingUnsatisfied) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusBadRequest, Code: "workflow.gating_unsatisfied",
		Message: "required document categories are not covered by staged documents", Data: e.Missing}
}
