package indices

import (
	"context"
	"errors"
	"shipflow/account"
	"shipflow/bizerror"
	"shipflow/client/es"
	"shipflow/domain"
	"shipflow/domain/flow"
	"shipflow/indices/indexlog"
	"shipflow/session"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	indexLogRecoveryLimiter     = rate.NewLimiter(rate.Every(30*time.Second), 1)
	IndexlogRecoveryRoutineFunc = IndexlogRecoveryRoutine

	RecoveryBatchSize = 100
)

func IndexlogRecoveryRoutine(sec *session.Context) error {
	if sec == nil || !sec.Perms.HasRole(account.SystemAdminPermission) {
		return bizerror.ErrForbidden
	}

	go func() {
		defer func() {
			if ret := recover(); ret != nil {
				logrus.Warnf("index log recovery routine exited: %v", ret)
			}
		}()
		recoverPendingIndexLogs()
	}()
	return nil
}

func recoverPendingIndexLogs() {
	for {
		logs, err := indexlog.LoadPendingIndexLogFunc(1, RecoveryBatchSize)
		if err != nil {
			logrus.Warnf("index log recovery: error on load pending index logs: %v", err)
			return
		}
		if len(logs) == 0 {
			logrus.Infof("index log recovery: there are no more pending index log")
			return
		}

		progressed := false
		for _, l := range logs {
			if l.SourceType != flow.SourceTypeWorkflowRequest {
				continue
			}

			detail, err := flow.DetailRequestFunc(l.SourceId, indexRobot)
			if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound) {
				// source is gone, remove its document and drop the pending log
				if err := es.DeleteDocumentByIdFunc(context.Background(), RequestIndexName, l.SourceId); err != nil {
					logrus.Warnf("index log recovery: error on delete document of request %d: %v", l.SourceId, err)
					continue
				}
				if err := indexlog.ObsoleteIndexLogFunc(l.ID); err != nil {
					logrus.Warnf("index log recovery: error on obsolete index log %d: %v", l.ID, err)
					continue
				}
				progressed = true
				continue
			}
			if err != nil {
				logrus.Warnf("index log recovery: error on detail request %d: %v", l.SourceId, err)
				continue
			}

			if err := IndexRequests([]domain.RequestDetail{*detail}); err != nil {
				logrus.Warnf("index log recovery: error on index request %d: %v", l.SourceId, err)
				continue
			}
			if err := indexlog.FinishIndexLogFunc(l.ID); err != nil {
				logrus.Warnf("index log recovery: error on finish index log %d: %v", l.ID, err)
				continue
			}
			progressed = true
		}

		if !progressed {
			return
		}
	}
}
