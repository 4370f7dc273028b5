package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

const (
	EventCategoryCreated       = "CREATED"
	EventCategoryStageAdvanced = "STAGE_ADVANCED"
	EventCategoryStageRejected = "STAGE_REJECTED"
	EventCategoryRecordAmended = "RECORD_AMENDED"
)

type EventCategory string

type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory     EventCategory     `json:"eventCategory"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`
}

type EventRecord struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
	Synced    bool            `json:"synced"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`

	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty

func (p UpdatedProperties) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *UpdatedProperties) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal value: %v", value)
	}
	if len(bytes) == 0 {
		*p = nil
		return nil
	}
	return json.Unmarshal(bytes, p)
}
