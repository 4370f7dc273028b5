package indexlog

import (
	"shipflow/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// IndexLog names the source record whose search document is out of date.
type IndexLog struct {
	SourceType string   `json:"sourceType" gorm:"index:for_search"`
	SourceId   types.ID `json:"sourceId" gorm:"index:for_search"`
	SourceDesc string   `json:"sourceDesc"`
}

// IndexLogRecord is pending while IndexedTime is zero and Obsolete is false.
// A later log for the same source obsoletes the earlier pending ones.
type IndexLogRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	IndexLog

	Obsolete    bool            `json:"obsolete"`
	Timestamp   types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
	IndexedTime types.Timestamp `json:"indexedTime" sql:"type:DATETIME(6)"`
}

func (r *IndexLogRecord) TableName() string {
	return "index_logs"
}

var (
	CreateIndexLogFunc        = CreateIndexLog
	FinishIndexLogFunc        = FinishIndexLog
	ObsoleteIndexLogFunc      = ObsoleteIndexLog
	IndexLogPersistCreateFunc = indexLogPersistCreate
	LoadPendingIndexLogFunc   = LoadPendingIndexLog
)

func CreateIndexLog(id types.ID, sourceType string, sourceId types.ID, sourceDesc string,
	timestamp types.Timestamp, tx *gorm.DB) (*IndexLogRecord, error) {

	record := IndexLogRecord{
		IndexLog: IndexLog{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,
		},
		ID:        id,
		Timestamp: timestamp,
	}

	if err := IndexLogPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

func indexLogPersistCreate(record *IndexLogRecord, tx *gorm.DB) error {
	// earlier pending logs of the same source are superseded by this one
	if err := tx.Model(&IndexLogRecord{}).
		Where("source_type = ? AND source_id = ? AND indexed_time <= ?",
			record.SourceType, record.SourceId, types.Timestamp{}).
		Update("obsolete", true).Error; err != nil {
		return err
	}
	return tx.Create(record).Error
}

func FinishIndexLog(id types.ID) error {
	return updateIndexLog(id, map[string]interface{}{
		"indexed_time": types.CurrentTimestamp(), "obsolete": false,
	})
}

func ObsoleteIndexLog(id types.ID) error {
	return updateIndexLog(id, map[string]interface{}{"obsolete": true})
}

func updateIndexLog(id types.ID, changes map[string]interface{}) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	return db.Model(&IndexLogRecord{}).Where("id = ?", id).Update(changes).Error
}

func LoadPendingIndexLog(page, size int) ([]IndexLogRecord, error) {
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}

	indexLogs := []IndexLogRecord{}
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Where("indexed_time <= ? AND obsolete != ?", types.Timestamp{}, true).
		Offset(offset).Limit(size).Find(&indexLogs).Error; err != nil {
		return nil, err
	}
	return indexLogs, nil
}
