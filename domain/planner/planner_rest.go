package planner

import (
	"net/http"
	"timewheel/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathPlannerEntries = "/v1/planner-entries"

func RegisterPlannerHandlers(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathPlannerEntries, middleWares...)
	g.GET("", HandleQueryPlannerEntries)
}

func HandleQueryPlannerEntries(c *gin.Context) {
	query := PlannerEntriesQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(err)
	}

	records, err := QueryPlannerEntriesFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
