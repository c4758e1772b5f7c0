package timesheet

import (
	"net/http"
	"timewheel/bizerror"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathTimer      = "/v1/timer"
	PathTimesheets = "/v1/timesheets"
)

func RegisterTimesheetsHandlers(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	timer := r.Group(PathTimer, middleWares...)
	timer.POST("", HandleToggleTimer)
	timer.POST("pause", HandleTogglePause)

	g := r.Group(PathTimesheets, middleWares...)
	g.GET("", HandleQueryTimesheets)
	g.GET("running", HandleQueryRunningTimesheets)
	g.PUT(":id/review", HandleReviewTimesheet)
}

func HandleToggleTimer(c *gin.Context) {
	req := TimerToggleRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(err)
	}

	result, err := ToggleTimerFunc(req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleTogglePause(c *gin.Context) {
	req := PauseToggleRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(err)
	}

	result, err := TogglePauseFunc(req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleQueryTimesheets(c *gin.Context) {
	query := TimesheetsQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(err)
	}

	records, err := QueryTimesheetsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func HandleQueryRunningTimesheets(c *gin.Context) {
	records, err := QueryRunningTimesheetsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func HandleReviewTimesheet(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	req := TimesheetReviewRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(err)
	}

	record, err := ReviewTimesheetFunc(id, req.Status, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}
