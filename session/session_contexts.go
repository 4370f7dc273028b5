package session

import (
	"shipflow/bizerror"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const TokenExpiration = 24 * time.Hour

var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

func FindSecurityContext(ctx *gin.Context) *Context {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return nil
	}
	secCtx, ok := value.(*Context)
	if !ok || secCtx.Token == "" {
		return nil
	}
	return secCtx
}

// SimpleAuthFilter resolves the caller's token to a cached security context
// and binds it to the request. The token is taken from the session cookie,
// or from a bearer Authorization header for non-browser clients.
func SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			panic(bizerror.ErrUnauthenticated)
		}
		value, found := TokenCache.Get(token)
		if !found {
			panic(bizerror.ErrUnauthenticated)
		}
		secCtx, ok := value.(*Context)
		if !ok {
			panic(bizerror.ErrUnauthenticated)
		}
		// sliding expiration: an active session stays alive
		TokenCache.SetDefault(token, secCtx)
		SaveSecurityContext(ctx, secCtx)
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(KeySecToken); err == nil && token != "" {
		return token
	}
	authorization := ctx.GetHeader("Authorization")
	if strings.HasPrefix(authorization, "Bearer ") {
		return strings.TrimPrefix(authorization, "Bearer ")
	}
	return ""
}

func SaveSecurityContext(ctx *gin.Context, secCtx *Context) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}
