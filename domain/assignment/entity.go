package assignment

import (
	"timewheel/domain"

	"github.com/fundwit/go-commons/types"
)

// Assignment binds one user to one job. At most one assignment exists
// per (job, user) pair; the unique index also backs the serialization
// of timer operations on the pair.
type Assignment struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	JobID    types.ID `json:"jobId" gorm:"unique_index:assignment_job_user_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID   types.ID `json:"userId" gorm:"unique_index:assignment_job_user_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TenantID types.ID `json:"tenantId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role string `json:"role"`

	// optional billing override; empty CostKind means none
	CostKind  domain.CostKind `json:"costKind" sql:"type:VARCHAR(16)"`
	CostValue float64         `json:"costValue" sql:"type:DECIMAL(10,2)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (a *Assignment) TableName() string {
	return "assignments"
}

type AssignmentCostUpdating struct {
	CostKind  domain.CostKind `json:"costKind" binding:"omitempty,oneof=hourly task"`
	CostValue float64         `json:"costValue" binding:"gte=0"`
}
