package flow_test

import (
	"shipflow/account"
	"shipflow/bizerror"
	"shipflow/domain"
	"shipflow/domain/flow"
	"shipflow/event"
	"shipflow/persistence"
	"shipflow/testinfra"
	"testing"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"

	"github.com/fundwit/go-commons/types"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("shipflow")
	assert.Nil(t, db.DS.GormDB().AutoMigrate(&domain.WorkflowRequest{}, &domain.StageRecord{},
		&domain.DocumentRecord{}, &event.EventRecord{}).Error)
	persistence.ActiveDataSourceManager = db.DS
	*testDatabase = db
}
func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

var creationDemo = &domain.RequestCreation{
	Title:       "Electronics import from Shenzhen",
	Description: "Container of consumer electronics",
	Category:    domain.CategoryImport,
	Priority:    domain.PriorityHigh,

	TrackingNumber: "TRK-20260901",
	EstimatedCost:  15000,
	SupplierName:   "Shenzhen Trading Co.",
}

func TestCreateRequest(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should require the operate permission", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		detail, err := flow.CreateRequest(creationDemo, nil)
		Expect(detail).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))

		detail, err = flow.CreateRequest(creationDemo, testinfra.BuildSecCtx(100, "some-other-role"))
		Expect(detail).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should persist the request with its creation entry and event", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		sec := testinfra.BuildSecCtx(100, account.WorkflowOperatePermission)
		detail, err := flow.CreateRequest(creationDemo, sec)
		Expect(err).To(BeNil())
		Expect(detail.ID).ToNot(BeZero())
		Expect(detail.Title).To(Equal(creationDemo.Title))
		Expect(detail.Category).To(Equal(domain.CategoryImport))
		Expect(detail.Priority).To(Equal(domain.PriorityHigh))
		Expect(detail.CurrentStageID).To(Equal(1))
		Expect(detail.CurrentStage).ToNot(BeNil())
		Expect(detail.CurrentStage.Name).To(Equal("Quotation & Approval"))
		Expect(detail.Completed).To(BeFalse())
		Expect(detail.CreateTime).To(Equal(detail.LastModified))

		Expect(len(detail.StageHistory)).To(Equal(1))
		creationEntry := detail.StageHistory[0]
		Expect(creationEntry.StageID).To(Equal(domain.CreationStageID))
		Expect(creationEntry.StageName).To(Equal(domain.CreationStageName))
		Expect(creationEntry.Comment).To(Equal(domain.CreationComment))
		Expect(creationEntry.Processor).To(Equal("user-100"))
		Expect(creationEntry.Amended()).To(BeFalse())

		var requests []domain.WorkflowRequest
		Expect(testDatabase.DS.GormDB().Find(&requests).Error).To(BeNil())
		Expect(len(requests)).To(Equal(1))
		Expect(requests[0].CurrentStageID).To(Equal(1))

		var records []domain.StageRecord
		Expect(testDatabase.DS.GormDB().Find(&records).Error).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].RequestID).To(Equal(detail.ID))

		var events []event.EventRecord
		Expect(testDatabase.DS.GormDB().Find(&events).Error).To(BeNil())
		Expect(len(events)).To(Equal(1))
		Expect(events[0].SourceType).To(Equal(flow.SourceTypeWorkflowRequest))
		Expect(events[0].SourceId).To(Equal(detail.ID))
		Expect(events[0].SourceDesc).To(Equal(creationDemo.Title))
		Expect(events[0].EventCategory).To(Equal(event.EventCategory(event.EventCategoryCreated)))
		Expect(events[0].CreatorId).To(Equal(types.ID(100)))
	})

	t.Run("should catch database errors", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		testDatabase.DS.GormDB().DropTable(&domain.StageRecord{})
		_, err := flow.CreateRequest(creationDemo, testinfra.BuildSecCtx(100, account.WorkflowOperatePermission))
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(Equal("Error 1146: Table '" + testDatabase.TestDatabaseName + ".stage_records' doesn't exist"))

		testDatabase.DS.GormDB().DropTable(&domain.WorkflowRequest{})
		_, err = flow.CreateRequest(creationDemo, testinfra.BuildSecCtx(100, account.WorkflowOperatePermission))
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(Equal("Error 1146: Table '" + testDatabase.TestDatabaseName + ".workflow_requests' doesn't exist"))
	})
}

func TestQueryRequests(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should require the operate permission", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		_, err := flow.QueryRequests(&domain.RequestQuery{}, nil)
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))

		_, err = flow.QueryRequests(&domain.RequestQuery{}, testinfra.BuildSecCtx(100, "guest"))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should filter by category, priority and title", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		sec := testinfra.BuildSecCtx(100, account.WorkflowOperatePermission)
		_, err := flow.CreateRequest(&domain.RequestCreation{
			Title: "Electronics import", Category: domain.CategoryImport, Priority: domain.PriorityHigh}, sec)
		Expect(err).To(BeNil())
		_, err = flow.CreateRequest(&domain.RequestCreation{
			Title: "Textile export", Category: domain.CategoryExport, Priority: domain.PriorityLow}, sec)
		Expect(err).To(BeNil())
		_, err = flow.CreateRequest(&domain.RequestCreation{
			Title: "Machinery import", Category: domain.CategoryImport, Priority: domain.PriorityLow}, sec)
		Expect(err).To(BeNil())

		requests, err := flow.QueryRequests(&domain.RequestQuery{}, sec)
		Expect(err).To(BeNil())
		Expect(len(*requests)).To(Equal(3))

		requests, err = flow.QueryRequests(&domain.RequestQuery{Category: domain.CategoryImport}, sec)
		Expect(err).To(BeNil())
		Expect(len(*requests)).To(Equal(2))

		requests, err = flow.QueryRequests(&domain.RequestQuery{Category: domain.CategoryImport, Priority: domain.PriorityLow}, sec)
		Expect(err).To(BeNil())
		Expect(len(*requests)).To(Equal(1))
		Expect((*requests)[0].Title).To(Equal("Machinery import"))

		requests, err = flow.QueryRequests(&domain.RequestQuery{Title: "Textile"}, sec)
		Expect(err).To(BeNil())
		Expect(len(*requests)).To(Equal(1))
		Expect((*requests)[0].Title).To(Equal("Textile export"))

		requests, err = flow.QueryRequests(&domain.RequestQuery{Title: "no-such-title"}, sec)
		Expect(err).To(BeNil())
		Expect(len(*requests)).To(Equal(0))
	})
}

func TestDetailRequest(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should require the operate permission", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		_, err := flow.DetailRequest(types.ID(404), nil)
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))
	})

	t.Run("should report missing requests", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		_, err := flow.DetailRequest(types.ID(404), testinfra.BuildSecCtx(100, account.WorkflowOperatePermission))
		Expect(err).To(Equal(gorm.ErrRecordNotFound))
	})

	t.Run("should return the request with its full ledger", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		sec := testinfra.BuildSecCtx(100, account.WorkflowOperatePermission)
		created, err := flow.CreateRequest(creationDemo, sec)
		Expect(err).To(BeNil())

		detail, err := flow.DetailRequest(created.ID, sec)
		Expect(err).To(BeNil())
		Expect(detail.ID).To(Equal(created.ID))
		Expect(detail.CurrentStageID).To(Equal(1))
		Expect(detail.CurrentStage.Name).To(Equal("Quotation & Approval"))
		Expect(detail.Completed).To(BeFalse())
		Expect(len(detail.StageHistory)).To(Equal(1))
		Expect(detail.StageHistory[0].StageID).To(Equal(domain.CreationStageID))
		Expect(detail.StageHistory[0].Documents).To(BeEmpty())
	})
}

func TestLoadRequests(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should page through requests ordered by id", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		sec := testinfra.BuildSecCtx(100, account.WorkflowOperatePermission)
		for _, title := range []string{"first", "second", "third"} {
			_, err := flow.CreateRequest(&domain.RequestCreation{
				Title: title, Category: domain.CategoryImport, Priority: domain.PriorityLow}, sec)
			Expect(err).To(BeNil())
		}

		page1, err := flow.LoadRequests(1, 2)
		Expect(err).To(BeNil())
		Expect(len(page1)).To(Equal(2))
		Expect(page1[0].ID < page1[1].ID).To(BeTrue())

		page2, err := flow.LoadRequests(2, 2)
		Expect(err).To(BeNil())
		Expect(len(page2)).To(Equal(1))

		page3, err := flow.LoadRequests(3, 2)
		Expect(err).To(BeNil())
		Expect(len(page3)).To(Equal(0))
	})
}
