package domain

import (
	"shipflow/domain/stage"

	"github.com/fundwit/go-commons/types"
)

// StageID 0 is reserved for the synthetic entry appended when a request is
// created.
const (
	CreationStageID   = 0
	CreationStageName = "Request Created"
	CreationComment   = "Request created and workflow started."

	// comment stamped when the review-and-confirm stage is completed
	ReviewCompletionComment = "All documents reviewed, proceeding to completion."
)

type StageRecord struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	RequestID types.ID `json:"requestId" gorm:"index:for_request" sql:"type:BIGINT UNSIGNED NOT NULL"`

	StageID   int             `json:"stageId"`
	StageName string          `json:"stageName"`
	Processor string          `json:"processor"`
	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
	Comment   string          `json:"comment" sql:"type:TEXT"`

	Documents []DocumentRecord `json:"documents" gorm:"-"`

	Amendment
}

func (r *StageRecord) TableName() string {
	return "stage_records"
}

// Amendment is stamped when a record's comment or documents are replaced
// after the fact. A zero Amendment means the record is original.
type Amendment struct {
	AmendmentProcessor string          `json:"amendmentProcessor,omitempty"`
	AmendmentTime      types.Timestamp `json:"amendmentTime,omitempty" sql:"type:DATETIME(6)"`
}

func (r *StageRecord) Amended() bool {
	return r.AmendmentProcessor != ""
}

type DocumentRecord struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	RecordID  types.ID `json:"recordId" gorm:"index:for_record" sql:"type:BIGINT UNSIGNED NOT NULL"`
	RequestID types.ID `json:"requestId" gorm:"index:for_request" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Type          stage.DocumentType `json:"type"`
	FileReference string             `json:"fileReference"`
	FileName      string             `json:"fileName"`
	UploadTime    types.Timestamp    `json:"uploadTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (d *DocumentRecord) TableName() string {
	return "document_records"
}

// DocumentSubmission is a candidate document before it is committed to a
// stage record: content is already stored, ownership is not yet assigned.
type DocumentSubmission struct {
	Type          stage.DocumentType `json:"type" validate:"required"`
	FileReference string             `json:"fileReference" validate:"required"`
	FileName      string             `json:"fileName"`
}
