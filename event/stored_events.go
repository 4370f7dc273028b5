package event

import (
	"shipflow/account"
	"shipflow/bizerror"
	"shipflow/persistence"
	"shipflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	EventPersistCreateFunc = eventPersistCreate
	QuerySourceEventsFunc  = QuerySourceEvents
)

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

// QuerySourceEvents returns the audit timeline of one source, oldest first.
// The timeline carries the same detail as the workflow itself, so it needs
// the same operate permission.
func QuerySourceEvents(sourceType string, sourceId types.ID, sec *session.Context) ([]EventRecord, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if !sec.Perms.HasRole(account.WorkflowOperatePermission) && !sec.Perms.HasRole(account.SystemAdminPermission) {
		return nil, bizerror.ErrForbidden
	}

	var records []EventRecord
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Where(&EventRecord{Event: Event{SourceType: sourceType, SourceId: sourceId}}).
		Order("timestamp ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
