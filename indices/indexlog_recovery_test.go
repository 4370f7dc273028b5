package indices

import (
	"context"
	"errors"
	"shipflow/account"
	"shipflow/authority"
	"shipflow/bizerror"
	"shipflow/client/es"
	"shipflow/domain"
	"shipflow/domain/flow"
	"shipflow/indices/indexlog"
	"shipflow/session"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestIndexlogRecoveryRoutine(t *testing.T) {
	RegisterTestingT(t)

	t.Run("only system admin can start the recovery routine", func(t *testing.T) {
		Expect(IndexlogRecoveryRoutine(nil)).To(Equal(bizerror.ErrForbidden))

		sec := session.Context{Perms: authority.Permissions{account.WorkflowOperatePermission}}
		Expect(IndexlogRecoveryRoutine(&sec)).To(Equal(bizerror.ErrForbidden))
	})
}

func TestRecoverPendingIndexLogs(t *testing.T) {
	RegisterTestingT(t)

	defer func() {
		indexlog.LoadPendingIndexLogFunc = indexlog.LoadPendingIndexLog
		indexlog.FinishIndexLogFunc = indexlog.FinishIndexLog
		indexlog.ObsoleteIndexLogFunc = indexlog.ObsoleteIndexLog
		flow.DetailRequestFunc = flow.DetailRequest
		es.IndexFunc = es.Index
		es.DeleteDocumentByIdFunc = es.DeleteDocumentById
	}()

	t.Run("should finish recovered logs and obsolete logs of vanished sources", func(t *testing.T) {
		pending := []indexlog.IndexLogRecord{
			{ID: 101, IndexLog: indexlog.IndexLog{SourceType: flow.SourceTypeWorkflowRequest, SourceId: 1001}},
			{ID: 102, IndexLog: indexlog.IndexLog{SourceType: flow.SourceTypeWorkflowRequest, SourceId: 1002}},
			{ID: 103, IndexLog: indexlog.IndexLog{SourceType: "other", SourceId: 1003}},
		}
		indexlog.LoadPendingIndexLogFunc = func(page, size int) ([]indexlog.IndexLogRecord, error) {
			result := pending
			pending = nil
			return result, nil
		}

		finished := []types.ID{}
		indexlog.FinishIndexLogFunc = func(id types.ID) error {
			finished = append(finished, id)
			return nil
		}
		obsoleted := []types.ID{}
		indexlog.ObsoleteIndexLogFunc = func(id types.ID) error {
			obsoleted = append(obsoleted, id)
			return nil
		}

		flow.DetailRequestFunc = func(id types.ID, sec *session.Context) (*domain.RequestDetail, error) {
			if id == 1002 {
				return nil, domain.ErrNotFound
			}
			return &domain.RequestDetail{WorkflowRequest: domain.WorkflowRequest{ID: id}}, nil
		}
		indexed := []types.ID{}
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			indexed = append(indexed, id)
			return nil
		}
		deleted := []types.ID{}
		es.DeleteDocumentByIdFunc = func(ctx context.Context, index string, id types.ID) error {
			Expect(index).To(Equal(RequestIndexName))
			deleted = append(deleted, id)
			return nil
		}

		recoverPendingIndexLogs()

		Expect(indexed).To(Equal([]types.ID{1001}))
		Expect(finished).To(Equal([]types.ID{101}))
		Expect(deleted).To(Equal([]types.ID{1002}))
		Expect(obsoleted).To(Equal([]types.ID{102}))
	})

	t.Run("a pending log of a vanished source stays when its document could not be deleted", func(t *testing.T) {
		loads := 0
		indexlog.LoadPendingIndexLogFunc = func(page, size int) ([]indexlog.IndexLogRecord, error) {
			loads++
			return []indexlog.IndexLogRecord{
				{ID: 102, IndexLog: indexlog.IndexLog{SourceType: flow.SourceTypeWorkflowRequest, SourceId: 1002}},
			}, nil
		}
		flow.DetailRequestFunc = func(id types.ID, sec *session.Context) (*domain.RequestDetail, error) {
			return nil, domain.ErrNotFound
		}
		es.DeleteDocumentByIdFunc = func(ctx context.Context, index string, id types.ID) error {
			return errors.New("a mocked error")
		}
		obsoleted := []types.ID{}
		indexlog.ObsoleteIndexLogFunc = func(id types.ID) error {
			obsoleted = append(obsoleted, id)
			return nil
		}

		recoverPendingIndexLogs()

		Expect(loads).To(Equal(1))
		Expect(obsoleted).To(BeEmpty())
	})

	t.Run("should stop when no pending log can make progress", func(t *testing.T) {
		loads := 0
		indexlog.LoadPendingIndexLogFunc = func(page, size int) ([]indexlog.IndexLogRecord, error) {
			loads++
			return []indexlog.IndexLogRecord{
				{ID: 101, IndexLog: indexlog.IndexLog{SourceType: flow.SourceTypeWorkflowRequest, SourceId: 1001}},
			}, nil
		}
		flow.DetailRequestFunc = func(id types.ID, sec *session.Context) (*domain.RequestDetail, error) {
			return nil, errors.New("a mocked error")
		}

		recoverPendingIndexLogs()
		Expect(loads).To(Equal(1))
	})

	t.Run("should stop when loading pending logs fails", func(t *testing.T) {
		loads := 0
		indexlog.LoadPendingIndexLogFunc = func(page, size int) ([]indexlog.IndexLogRecord, error) {
			loads++
			return nil, errors.New("a mocked error")
		}
		recoverPendingIndexLogs()
		Expect(loads).To(Equal(1))
	})
}
