package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Job struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	TenantID   types.ID `json:"tenantId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Identifier string   `json:"identifier" gorm:"unique_index:job_identifier_unique"`
	Name       string   `json:"name"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (j *Job) TableName() string {
	return "jobs"
}
