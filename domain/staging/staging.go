package staging

import (
	"shipflow/bizerror"
	"shipflow/domain"
	"shipflow/domain/stage"
	"shipflow/session"
	"sync"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/patrickmn/go-cache"
)

// Buffers hold candidate documents while a user is working on advancing a
// request past its current stage. They live as long as the owning session
// and are dropped on commit or expiry, never persisted.
var (
	buffers = cache.New(session.TokenExpiration, 5*time.Minute)
	mutex   sync.Mutex
)

var (
	StageDocumentFunc   = StageDocument
	UnstageDocumentFunc = UnstageDocument
	ListStagedFunc      = ListStaged
	ClearFunc           = Clear
)

func bufferKey(token string, requestID types.ID) string {
	return token + "/" + requestID.String()
}

func StageDocument(token string, requestID types.ID, doc domain.DocumentSubmission) ([]domain.DocumentSubmission, error) {
	if !stage.IsValidDocumentType(doc.Type) {
		return nil, bizerror.ErrUnknownDocumentType
	}

	mutex.Lock()
	defer mutex.Unlock()

	staged := append(listStaged(token, requestID), doc)
	buffers.Set(bufferKey(token, requestID), staged, cache.DefaultExpiration)
	return snapshot(staged), nil
}

func UnstageDocument(token string, requestID types.ID, index int) ([]domain.DocumentSubmission, error) {
	mutex.Lock()
	defer mutex.Unlock()

	staged := listStaged(token, requestID)
	if index < 0 || index >= len(staged) {
		return nil, domain.ErrNotFound
	}
	remaining := snapshot(staged)
	remaining = append(remaining[:index], remaining[index+1:]...)
	buffers.Set(bufferKey(token, requestID), remaining, cache.DefaultExpiration)
	return snapshot(remaining), nil
}

func ListStaged(token string, requestID types.ID) []domain.DocumentSubmission {
	mutex.Lock()
	defer mutex.Unlock()
	return snapshot(listStaged(token, requestID))
}

// listStaged returns the cached slice itself; callers must hold mutex and
// never hand it out without copying.
func listStaged(token string, requestID types.ID) []domain.DocumentSubmission {
	value, found := buffers.Get(bufferKey(token, requestID))
	if !found {
		return []domain.DocumentSubmission{}
	}
	staged, ok := value.([]domain.DocumentSubmission)
	if !ok {
		return []domain.DocumentSubmission{}
	}
	return staged
}

func snapshot(staged []domain.DocumentSubmission) []domain.DocumentSubmission {
	result := make([]domain.DocumentSubmission, len(staged))
	copy(result, staged)
	return result
}

func Clear(token string, requestID types.ID) {
	buffers.Delete(bufferKey(token, requestID))
}

// CoversRequired reports whether every required category has at least one
// staged document. Extra staged documents are ignored.
func CoversRequired(staged []domain.DocumentSubmission, required []stage.DocumentType) bool {
	return len(MissingDocumentTypes(staged, required)) == 0
}

func MissingDocumentTypes(staged []domain.DocumentSubmission, required []stage.DocumentType) []stage.DocumentType {
	stagedTypes := map[stage.DocumentType]bool{}
	for _, doc := range staged {
		stagedTypes[doc.Type] = true
	}

	missing := []stage.DocumentType{}
	for _, r := range required {
		if !stagedTypes[r] {
			missing = append(missing, r)
		}
	}
	return missing
}
