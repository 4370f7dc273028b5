package flow

import (
	"encoding/json"
	"errors"
	"shipflow/bizerror"
	"shipflow/domain"
	"shipflow/domain/stage"
	"shipflow/domain/staging"
	"shipflow/event"
	"shipflow/idgen"
	"shipflow/persistence"
	"shipflow/session"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	AdvanceStageFunc     = AdvanceStage
	RejectStageFunc      = RejectStage
	AmendStageRecordFunc = AmendStageRecord
)

// AdvanceStage commits the staged documents of the caller's session as a
// new ledger entry and moves the stage pointer forward by one. The gating
// rule is an all-of match: every required document category of the current
// stage must have at least one staged document, extra categories are
// ignored.
func AdvanceStage(id types.ID, c *domain.StageAdvancing, sec *session.Context) (*domain.RequestDetail, error) {
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		request, err := findRequestAndCheckPerms(tx, id, sec)
		if err != nil {
			return err
		}
		if ActiveCatalog.IsTerminal(request.CurrentStageID) {
			return bizerror.ErrInvalidTransition
		}
		currentStage, found := ActiveCatalog.StageByID(request.CurrentStageID)
		if !found {
			return bizerror.ErrStageInvalid
		}

		staged := staging.ListStagedFunc(sec.Token, id)
		missing := staging.MissingDocumentTypes(staged, currentStage.RequiredDocuments)
		if len(missing) > 0 {
			return &bizerror.ErrGatingUnsatisfied{Missing: missing}
		}

		comment := c.Comment
		if currentStage.Kind == stage.KindReviewAndConfirm {
			comment = domain.ReviewCompletionComment
		}

		now := types.CurrentTimestamp()
		record := domain.StageRecord{
			ID:        idgen.NextID(idWorker),
			RequestID: request.ID,
			StageID:   request.CurrentStageID,
			StageName: currentStage.Name,
			Processor: processorOf(sec),
			Timestamp: now,
			Comment:   comment,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for _, doc := range staged {
			documentRecord := domain.DocumentRecord{
				ID:        idgen.NextID(idWorker),
				RecordID:  record.ID,
				RequestID: request.ID,

				Type:          doc.Type,
				FileReference: doc.FileReference,
				FileName:      doc.FileName,
				UploadTime:    now,
			}
			if err := tx.Create(&documentRecord).Error; err != nil {
				return err
			}
		}

		q := tx.Model(&domain.WorkflowRequest{}).
			Where("id = ? AND current_stage_id = ?", request.ID, request.CurrentStageID).
			Updates(map[string]interface{}{"current_stage_id": request.CurrentStageID + 1, "last_modified": now})
		if err := q.Error; err != nil {
			return err
		}
		if q.RowsAffected != 1 {
			return bizerror.ErrStageConflict
		}

		ev, err = event.CreateEvent(SourceTypeWorkflowRequest, request.ID, request.Title, event.EventCategoryStageAdvanced,
			[]event.UpdatedProperty{{
				PropertyName: "CurrentStageID",
				OldValue:     strconv.Itoa(request.CurrentStageID),
				NewValue:     strconv.Itoa(request.CurrentStageID + 1),
			}},
			&sec.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	staging.ClearFunc(sec.Token, id)
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return DetailRequestFunc(id, sec)
}

// RejectStage records a rejection act in the audit trail. The stage
// pointer is left untouched, there is no rollback to an earlier stage.
func RejectStage(id types.ID, c *domain.StageRejecting, sec *session.Context) error {
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		request, err := findRequestAndCheckPerms(tx, id, sec)
		if err != nil {
			return err
		}
		if ActiveCatalog.IsTerminal(request.CurrentStageID) {
			return bizerror.ErrInvalidTransition
		}

		ev, err = event.CreateEvent(SourceTypeWorkflowRequest, request.ID, request.Title, event.EventCategoryStageRejected,
			[]event.UpdatedProperty{{
				PropertyName: "Comment",
				NewValue:     c.Comment,
			}},
			&sec.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err != nil {
		return err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

// AmendStageRecord replaces the comment and documents of an already-passed
// ledger entry in place and stamps the amendment block. The ledger length
// never changes; the replaced values are preserved in the audit trail.
func AmendStageRecord(requestID, recordID types.ID, c *domain.RecordAmending, sec *session.Context) (*domain.StageRecord, error) {
	for _, doc := range c.Documents {
		if !stage.IsValidDocumentType(doc.Type) {
			return nil, bizerror.ErrUnknownDocumentType
		}
	}

	var amended domain.StageRecord
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		request, err := findRequestAndCheckPerms(tx, requestID, sec)
		if err != nil {
			return err
		}

		var record domain.StageRecord
		if err := tx.Where(&domain.StageRecord{ID: recordID, RequestID: requestID}).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if record.StageID == domain.CreationStageID || record.StageID >= request.CurrentStageID {
			return bizerror.ErrInvalidTransition
		}

		var oldDocuments []domain.DocumentRecord
		if err := tx.Where(domain.DocumentRecord{RecordID: record.ID}).Order("id ASC").Find(&oldDocuments).Error; err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		q := tx.Model(&domain.StageRecord{}).Where(&domain.StageRecord{ID: record.ID}).
			Updates(map[string]interface{}{
				"comment":             c.Comment,
				"amendment_processor": processorOf(sec),
				"amendment_time":      now,
			})
		if err := q.Error; err != nil {
			return err
		}
		if q.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(q.RowsAffected, 10))
		}

		if err := tx.Delete(domain.DocumentRecord{}, "record_id = ?", record.ID).Error; err != nil {
			return err
		}
		newDocuments := make([]domain.DocumentRecord, 0, len(c.Documents))
		for _, doc := range c.Documents {
			documentRecord := domain.DocumentRecord{
				ID:        idgen.NextID(idWorker),
				RecordID:  record.ID,
				RequestID: request.ID,

				Type:          doc.Type,
				FileReference: doc.FileReference,
				FileName:      doc.FileName,
				UploadTime:    now,
			}
			if err := tx.Create(&documentRecord).Error; err != nil {
				return err
			}
			newDocuments = append(newDocuments, documentRecord)
		}

		if err := tx.Model(&domain.WorkflowRequest{}).Where(&domain.WorkflowRequest{ID: request.ID}).
			Updates(map[string]interface{}{"last_modified": now}).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent(SourceTypeWorkflowRequest, request.ID, request.Title, event.EventCategoryRecordAmended,
			[]event.UpdatedProperty{
				{PropertyName: "Comment", OldValue: record.Comment, NewValue: c.Comment},
				{PropertyName: "Documents", OldValue: describeDocuments(oldDocuments), NewValue: describeDocuments(newDocuments)},
			},
			&sec.Identity, now, tx)
		if err != nil {
			return err
		}

		amended = record
		amended.Comment = c.Comment
		amended.Amendment = domain.Amendment{AmendmentProcessor: processorOf(sec), AmendmentTime: now}
		amended.Documents = newDocuments
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &amended, nil
}

func describeDocuments(documents []domain.DocumentRecord) string {
	briefs := make([]map[string]string, 0, len(documents))
	for _, doc := range documents {
		briefs = append(briefs, map[string]string{
			"type": string(doc.Type), "fileReference": doc.FileReference, "fileName": doc.FileName,
		})
	}
	raw, err := json.Marshal(briefs)
	if err != nil {
		return ""
	}
	return string(raw)
}
