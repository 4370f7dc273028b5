package testinfra

import (
	"net/http"
	"net/http/httptest"
	"shipflow/authority"
	"shipflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BuildSecCtx build security context
func BuildSecCtx(uid types.ID, perms ...string) *session.Context {
	return &session.Context{
		Token:    uuid.New().String(),
		Identity: session.Identity{ID: uid, Name: "user-" + uid.String()},
		Perms:    authority.Permissions(perms),
	}
}

// ExecuteRequest run the request through the router and collect the response
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}
