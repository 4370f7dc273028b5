package flow

import (
	"errors"
	"shipflow/account"
	"shipflow/bizerror"
	"shipflow/domain"
	"shipflow/domain/stage"
	"shipflow/event"
	"shipflow/idgen"
	"shipflow/persistence"
	"shipflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const SourceTypeWorkflowRequest = "workflow_request"

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	// ActiveCatalog is the stage pipeline every request runs through,
	// fixed at process start.
	ActiveCatalog = &stage.ImportExportCatalog

	CreateRequestFunc = CreateRequest
	QueryRequestsFunc = QueryRequests
	DetailRequestFunc = DetailRequest
	LoadRequestsFunc  = LoadRequests
)

func CreateRequest(c *domain.RequestCreation, sec *session.Context) (*domain.RequestDetail, error) {
	if err := checkOperatePerms(sec); err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	request := domain.WorkflowRequest{
		ID:          idgen.NextID(idWorker),
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Priority:    c.Priority,

		CurrentStageID: 1,

		TrackingNumber:       c.TrackingNumber,
		EstimatedCost:        c.EstimatedCost,
		SupplierName:         c.SupplierName,
		SupplierContact:      c.SupplierContact,
		ExpectedDeliveryDate: c.ExpectedDeliveryDate,

		CreateTime:   now,
		LastModified: now,
	}

	creationRecord := domain.StageRecord{
		ID:        idgen.NextID(idWorker),
		RequestID: request.ID,
		StageID:   domain.CreationStageID,
		StageName: domain.CreationStageName,
		Processor: processorOf(sec),
		Timestamp: now,
		Comment:   domain.CreationComment,
		Documents: []domain.DocumentRecord{},
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		if err := tx.Create(&creationRecord).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(SourceTypeWorkflowRequest, request.ID, request.Title, event.EventCategoryCreated,
			nil, &sec.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	firstStage, _ := ActiveCatalog.StageByID(request.CurrentStageID)
	return &domain.RequestDetail{
		WorkflowRequest: request,
		StageHistory:    []domain.StageRecord{creationRecord},
		CurrentStage:    &firstStage,
	}, nil
}

func QueryRequests(query *domain.RequestQuery, sec *session.Context) (*[]domain.WorkflowRequest, error) {
	if err := checkOperatePerms(sec); err != nil {
		return nil, err
	}

	var requests []domain.WorkflowRequest
	db := persistence.ActiveDataSourceManager.GormDB()

	q := db.Where(domain.WorkflowRequest{Category: query.Category, Priority: query.Priority})
	if query.Title != "" {
		q = q.Where("title like ?", "%"+query.Title+"%")
	}
	if err := q.Order("create_time DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return &requests, nil
}

// LoadRequests loads a page of workflow requests ordered by id, for batch jobs.
func LoadRequests(page, size int) ([]domain.WorkflowRequest, error) {
	var requests []domain.WorkflowRequest
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Order("id ASC").Offset((page - 1) * size).Limit(size).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func DetailRequest(id types.ID, sec *session.Context) (*domain.RequestDetail, error) {
	if err := checkOperatePerms(sec); err != nil {
		return nil, err
	}

	detail := domain.RequestDetail{}
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Where(&domain.WorkflowRequest{ID: id}).First(&detail.WorkflowRequest).Error; err != nil {
		return nil, err
	}

	records, err := loadStageRecords(db, id)
	if err != nil {
		return nil, err
	}
	detail.StageHistory = records

	if ActiveCatalog.IsTerminal(detail.CurrentStageID) {
		detail.Completed = true
	} else {
		current, found := ActiveCatalog.StageByID(detail.CurrentStageID)
		if !found {
			return nil, bizerror.ErrStageInvalid
		}
		detail.CurrentStage = &current
	}

	return &detail, nil
}

// loadStageRecords returns the ledger of one request, oldest first, with
// attached documents.
func loadStageRecords(db *gorm.DB, requestID types.ID) ([]domain.StageRecord, error) {
	var records []domain.StageRecord
	if err := db.Where(domain.StageRecord{RequestID: requestID}).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	var documents []domain.DocumentRecord
	if err := db.Where(domain.DocumentRecord{RequestID: requestID}).Order("id ASC").Find(&documents).Error; err != nil {
		return nil, err
	}
	documentsByRecord := map[types.ID][]domain.DocumentRecord{}
	for _, doc := range documents {
		documentsByRecord[doc.RecordID] = append(documentsByRecord[doc.RecordID], doc)
	}

	for idx := range records {
		docs := documentsByRecord[records[idx].ID]
		if docs == nil {
			docs = []domain.DocumentRecord{}
		}
		records[idx].Documents = docs
	}
	return records, nil
}

func findRequestAndCheckPerms(db *gorm.DB, id types.ID, sec *session.Context) (*domain.WorkflowRequest, error) {
	if err := checkOperatePerms(sec); err != nil {
		return nil, err
	}
	var request domain.WorkflowRequest
	if err := db.Where(&domain.WorkflowRequest{ID: id}).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func checkOperatePerms(sec *session.Context) error {
	if sec == nil {
		return bizerror.ErrUnauthenticated
	}
	if !sec.Perms.HasRole(account.WorkflowOperatePermission) && !sec.Perms.HasRole(account.SystemAdminPermission) {
		return bizerror.ErrForbidden
	}
	return nil
}

func processorOf(sec *session.Context) string {
	if sec.Identity.Nickname != "" {
		return sec.Identity.Nickname
	}
	return sec.Identity.Name
}
