package sessions

import (
	"net/http"
	"shipflow/account"
	"shipflow/bizerror"
	"shipflow/common"
	"shipflow/persistence"
	"shipflow/session"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

func RegisterSessionsHandler(r *gin.Engine) {
	g := r.Group("/v1/sessions")
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
}

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", DetailSessionHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: err.Error()})
		return
	}
	user := account.User{}
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Model(&account.User{}).Where(&account.User{Name: login.Name, Secret: account.HashSha256(login.Password)}).Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			panic(bizerror.ErrUnauthenticated)
		}
		c.JSON(http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
		return
	}
	token := uuid.New().String()
	securityContext := session.Context{Token: token,
		Identity: session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname},
		Perms:    account.PermsOfUser(&user), SigningTime: time.Now()}
	session.TokenCache.Set(token, &securityContext, cache.DefaultExpiration)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &securityContext)
}

func DetailSessionHandler(c *gin.Context) {
	secCtx := session.FindSecurityContext(c)
	if secCtx == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	c.JSON(http.StatusOK, secCtx)
}
