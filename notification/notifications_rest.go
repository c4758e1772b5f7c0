package notification

import (
	"net/http"
	"timewheel/bizerror"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

const PathNotifications = "/v1/notifications"

func RegisterNotificationsHandlers(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathNotifications, middleWares...)
	g.GET("", HandleListNotifications)
	g.PUT(":id/read", HandleMarkNotificationRead)
}

func HandleListNotifications(c *gin.Context) {
	records, err := ListNotificationsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func HandleMarkNotificationRead(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := MarkNotificationReadFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}
