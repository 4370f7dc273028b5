package account

import (
	"net/http"
	"shipflow/bizerror"
	"shipflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
)

func RegisterUsersHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	u := r.Group("/v1/session-users", middleWares...)
	u.PUT("basic-auths", HandleUpdateBaseAuth)

	users := r.Group("/v1/users", middleWares...)
	users.GET("", HandleQueryUsers)
	users.POST("", HandleCreateUser)
}

func HandleQueryUsers(c *gin.Context) {
	results, err := QueryUsersFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, results)
}

func HandleCreateUser(c *gin.Context) {
	payload := UserCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	result, err := CreateUserFunc(&payload, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleUpdateBaseAuth(c *gin.Context) {
	payload := BasicAuthUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateBasicAuthSecretFunc(&payload, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}
