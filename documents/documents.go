package documents

import (
	"context"
	"io"
	"io/ioutil"
	"shipflow/bizerror"
	"shipflow/client/oss"
	"shipflow/domain"
	"shipflow/session"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
)

var (
	UploadDocumentFunc = UploadDocument
	DetailDocumentFunc = DetailDocument
)

// UploadDocument stores the file content and returns the file reference
// to be carried by a staged document.
func UploadDocument(requestID types.ID, fileName string, r io.Reader, s *session.Context) (string, error) {
	if s == nil || !s.Authenticated() {
		return "", bizerror.ErrUnauthenticated
	}

	key := "documents/" + requestID.String() + "/" + uuid.New().String() + "/" + fileName
	if err := oss.PutObjectFunc(context.Background(), key, r); err != nil {
		return "", err
	}
	return key, nil
}

func DetailDocument(key string, s *session.Context) ([]byte, error) {
	r, err := oss.GetObjectFunc(context.Background(), key)
	if err != nil {
		if serErr, ok := err.(alioss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}
