package assignment

import (
	"net/http"
	"timewheel/bizerror"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathAssignments = "/v1/assignments"

func RegisterAssignmentsHandlers(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAssignments, middleWares...)
	g.GET("", HandleListAssignments)
	g.PUT(":id/cost", HandleUpdateAssignmentCost)
	g.DELETE(":id", HandleDeleteAssignment)
}

type assignmentsQuery struct {
	JobID types.ID `form:"jobId" binding:"required"`
}

func HandleListAssignments(c *gin.Context) {
	query := assignmentsQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(err)
	}

	records, err := ListAssignmentsFunc(query.JobID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func HandleUpdateAssignmentCost(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updating := AssignmentCostUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(err)
	}

	record, err := UpdateAssignmentCostFunc(id, updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func HandleDeleteAssignment(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := DeleteAssignmentFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
