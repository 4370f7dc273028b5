package event

import (
	"shipflow/idgen"
	"shipflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var eventIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

func CreateEvent(sourceType string, sourceId types.ID, sourceDesc string, category EventCategory,
	updatedProperties []UpdatedProperty, identity *session.Identity, timestamp types.Timestamp,
	db *gorm.DB) (*EventRecord, error) {

	record := EventRecord{
		ID: idgen.NextID(eventIdWorker),
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,

			CreatorId:   identity.ID,
			CreatorName: identity.Name,
		},
		Synced:    false,
		Timestamp: timestamp,
	}
	if err := EventPersistCreateFunc(&record, db); err != nil {
		return nil, err
	}
	return &record, nil
}
