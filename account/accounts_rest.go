package account

import (
	"net/http"
	"timewheel/authority"
	"timewheel/session"

	"github.com/gin-gonic/gin"
)

const PathAccountInfo = "/v1/account-info"

type AccountInfo struct {
	UserInfo

	Perms       authority.Permissions `json:"perms"`
	TenantRoles authority.TenantRoles `json:"tenantRoles"`
}

func RegisterAccountHandlers(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAccountInfo, middleWares...)
	g.GET("", HandleGetAccountInfo)
}

// HandleGetAccountInfo returns the caller's profile with a fresh view of
// the caller's tenant permissions, bypassing the cached session.
func HandleGetAccountInfo(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	user, err := FindUserFunc(s.Identity.ID)
	if err != nil {
		panic(err)
	}

	perms, tenantRoles := LoadPermFunc(user.ID)
	c.JSON(http.StatusOK, &AccountInfo{
		UserInfo:    UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname},
		Perms:       perms,
		TenantRoles: tenantRoles,
	})
}
