package budget

import (
	"timewheel/domain"

	"github.com/fundwit/go-commons/types"
)

// BudgetItem is one billable line posted from one approved timesheet.
// The unique index on TimesheetID gives the posting upsert semantics:
// re-approval overwrites instead of duplicating.
type BudgetItem struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	TimesheetID types.ID `json:"timesheetId" gorm:"unique_index:budget_timesheet_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	JobID       types.ID `json:"jobId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID      types.ID `json:"userId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TenantID    types.ID `json:"tenantId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	CostKind domain.CostKind `json:"costKind" sql:"type:VARCHAR(16)"`
	Hours    float64         `json:"hours" sql:"type:DECIMAL(10,2)"`
	Rate     float64         `json:"rate" sql:"type:DECIMAL(10,2)"`
	Amount   float64         `json:"amount" sql:"type:DECIMAL(10,2)"`

	// internal cost, derived from the user's own default rates
	CostRate   float64 `json:"costRate" sql:"type:DECIMAL(10,2)"`
	CostAmount float64 `json:"costAmount" sql:"type:DECIMAL(10,2)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (b *BudgetItem) TableName() string {
	return "budget_items"
}
