package reports

import (
	"net/http"
	"timewheel/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathTimesheetReports = "/v1/timesheet-reports"

func RegisterTimesheetReportsHandlers(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathTimesheetReports, middleWares...)
	g.GET("", HandleSearchTimesheetReports)
	g.POST("sync", HandleScheduleSyncRun)
}

func HandleSearchTimesheetReports(c *gin.Context) {
	query := TimesheetReportsQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(err)
	}

	docs, err := SearchTimesheetReportsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, docs)
}

func HandleScheduleSyncRun(c *gin.Context) {
	accepted, err := ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	if !accepted {
		c.JSON(http.StatusOK, gin.H{"result": "previous run is still in progress"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"result": "accepted"})
}
