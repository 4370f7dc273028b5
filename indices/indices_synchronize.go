package indices

import (
	"context"
	"fmt"
	"shipflow/account"
	"shipflow/client/es"
	"shipflow/authority"
	"shipflow/bizerror"
	"shipflow/domain"
	"shipflow/domain/flow"
	"shipflow/event"
	"shipflow/idgen"
	"shipflow/indices/indexlog"
	"shipflow/persistence"
	"shipflow/session"
	"sync"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	RequestIndexEventHandlerName = "requestIndexer"
	indexRobot                   = &session.Context{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{account.WorkflowOperatePermission},
	}

	indexLogIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

func ScheduleNewSyncRun(sec *session.Context) (bool, error) {
	if sec == nil || !sec.Perms.HasRole(account.SystemAdminPermission) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	// drop the index first so documents of vanished requests do not linger;
	// a failed drop is not fatal, re-indexing overwrites by id anyway
	if err := es.DropIndexFunc(context.Background(), RequestIndexName); err != nil {
		logrus.Warnf("indices fully sync: error on drop index %s: %v", RequestIndexName, err)
	}

	page := 1
	for {
		requests, err := flow.LoadRequestsFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrive requests(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(requests) == 0 {
			logrus.Infof("indices fully sync: there are no more request to index")
			return nil // loop exit
		}

		details := make([]domain.RequestDetail, 0, len(requests))
		for _, r := range requests {
			detail, err := flow.DetailRequestFunc(r.ID, indexRobot)
			if err != nil {
				logrus.Warnf("indices fully sync: error on detail request %d: %v", r.ID, err)
				continue
			}
			details = append(details, *detail)
		}

		// IndexFunc will be invoked
		if err := IndexRequests(details); err != nil {
			logrus.Warnf("indices fully sync: error on index requests(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

func IndexRequestEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != flow.SourceTypeWorkflowRequest {
		return nil
	}

	detail, err := flow.DetailRequestFunc(e.Event.SourceId, indexRobot)
	if err != nil {
		recordPendingIndexLog(e)
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail request when index request %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: RequestIndexEventHandlerName,
		}
	}
	if err := IndexRequests([]domain.RequestDetail{*detail}); err != nil {
		recordPendingIndexLog(e)
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index request %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: RequestIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: RequestIndexEventHandlerName}
}

// recordPendingIndexLog leaves a pending log so the recovery routine can retry the index later.
func recordPendingIndexLog(e *event.EventRecord) {
	db := persistence.ActiveDataSourceManager.GormDB()
	_, err := indexlog.CreateIndexLogFunc(idgen.NextID(indexLogIdWorker), e.SourceType, e.Event.SourceId,
		e.Event.SourceDesc, types.CurrentTimestamp(), db)
	if err != nil {
		logrus.Warnf("failed to record pending index log of request %d: %v", e.Event.SourceId, err)
	}
}
