package indices

import (
	"context"
	"fmt"
	"shipflow/account"
	"shipflow/bizerror"
	"shipflow/client/es"
	"shipflow/domain"
	"shipflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	RequestIndexName = "requests"

	IndexedRequestDocumentFunc = IndexedRequestDocument
)

type RequestDocument struct {
	domain.RequestDetail
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

// IndexedRequestDocument returns the raw document the search index currently
// holds for one request, for checking index health after a sync or recovery.
func IndexedRequestDocument(ctx context.Context, id types.ID, sec *session.Context) (es.Source, error) {
	if sec == nil || !sec.Perms.HasRole(account.SystemAdminPermission) {
		return "", bizerror.ErrForbidden
	}
	return es.GetDocumentFunc(ctx, RequestIndexName, id)
}

func IndexRequests(requests []domain.RequestDetail) error {
	docs := make([]RequestDocument, 0, len(requests))
	for _, r := range requests {
		docs = append(docs, RequestDocument{RequestDetail: r})
	}

	if err := saveRequestDocuments(docs); err != nil {
		return err
	}
	return nil
}

func saveRequestDocuments(requestDocs []RequestDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range requestDocs {
		if err := es.IndexFunc(context.Background(), RequestIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index request %d %s %s\n", doc.ID, doc.Title, err)
		} else {
			logrus.Infof("index request %d %s successfully\n", doc.ID, doc.Title)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
