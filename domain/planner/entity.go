package planner

import (
	"github.com/fundwit/go-commons/types"
)

const DefaultEntryTitle = "Tracked work"

// PlannerEntry is the daily capacity-planning aggregate for one
// (user, job, day). It always holds the day's total, not an increment.
type PlannerEntry struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	UserID types.ID `json:"userId" gorm:"unique_index:planner_user_job_day_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	JobID  types.ID `json:"jobId" gorm:"unique_index:planner_user_job_day_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	// Day in server-local time, formatted 2006-01-02
	Day string `json:"day" gorm:"unique_index:planner_user_job_day_unique" sql:"type:DATE NOT NULL"`

	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
	IsDone  bool   `json:"isDone"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (e *PlannerEntry) TableName() string {
	return "planner_entries"
}
