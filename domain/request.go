package domain

import (
	"shipflow/domain/stage"

	"github.com/fundwit/go-commons/types"
)

type RequestCategory string

const (
	CategoryImport RequestCategory = "import"
	CategoryExport RequestCategory = "export"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type WorkflowRequest struct {
	ID          types.ID        `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Title       string          `json:"title"`
	Description string          `json:"description" sql:"type:TEXT"`
	Category    RequestCategory `json:"category"`
	Priority    Priority        `json:"priority"`

	CurrentStageID int `json:"currentStageId"`

	TrackingNumber       string  `json:"trackingNumber"`
	EstimatedCost        float64 `json:"estimatedCost"`
	ActualCost           float64 `json:"actualCost"`
	SupplierName         string  `json:"supplierName"`
	SupplierContact      string  `json:"supplierContact"`
	ExpectedDeliveryDate string  `json:"expectedDeliveryDate"`

	CreateTime   types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	LastModified types.Timestamp `json:"lastModified" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *WorkflowRequest) TableName() string {
	return "workflow_requests"
}

type RequestDetail struct {
	WorkflowRequest

	StageHistory []StageRecord          `json:"stageHistory" gorm:"-"`
	CurrentStage *stage.StageDefinition `json:"currentStage,omitempty" gorm:"-"`
	Completed    bool                   `json:"completed" gorm:"-"`
}

type RequestCreation struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Category    RequestCategory `json:"category" validate:"required,oneof=import export"`
	Priority    Priority        `json:"priority" validate:"required,oneof=high medium low"`

	TrackingNumber       string  `json:"trackingNumber"`
	EstimatedCost        float64 `json:"estimatedCost"`
	SupplierName         string  `json:"supplierName"`
	SupplierContact      string  `json:"supplierContact"`
	ExpectedDeliveryDate string  `json:"expectedDeliveryDate"`
}

type RequestQuery struct {
	Title    string          `json:"title" form:"title"`
	Category RequestCategory `json:"category" form:"category"`
	Priority Priority        `json:"priority" form:"priority"`
}

type StageAdvancing struct {
	Comment string `json:"comment"`
}

type StageRejecting struct {
	Comment string `json:"comment" validate:"required"`
}

type RecordAmending struct {
	Comment   string               `json:"comment"`
	Documents []DocumentSubmission `json:"documents"`
}
