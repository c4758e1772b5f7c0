package budget

import (
	"net/http"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathBudgetItems = "/v1/budget-items"

func RegisterBudgetItemsHandlers(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathBudgetItems, middleWares...)
	g.GET("", HandleQueryBudgetItems)
}

type budgetItemsQuery struct {
	JobID types.ID `form:"jobId" binding:"required"`
}

func HandleQueryBudgetItems(c *gin.Context) {
	query := budgetItemsQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(err)
	}

	records, err := QueryBudgetItemsFunc(query.JobID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
