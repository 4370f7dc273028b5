package session

import (
	"shipflow/authority"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Context struct {
	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (c *Context) Authenticated() bool {
	return c != nil && c.Token != ""
}
