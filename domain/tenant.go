package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	TenantRoleManager = "manager"
	TenantRoleMember  = "member"
)

// TenantRole is a role the session user holds on one tenant,
// carried inside the session context.
type TenantRole struct {
	TenantID   types.ID `json:"tenantId"`
	TenantName string   `json:"tenantName"`
	Role       string   `json:"role"`
}

// TenantMember is the persisted membership of one user in one tenant.
// It is the metadata source of tenant-scoped permissions.
type TenantMember struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	TenantID types.ID `json:"tenantId" gorm:"unique_index:tenant_member_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID   types.ID `json:"userId" gorm:"unique_index:tenant_member_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Role     string   `json:"role"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (m *TenantMember) TableName() string {
	return "tenant_members"
}

type Tenant struct {
	ID   types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name string   `json:"name"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (t *Tenant) TableName() string {
	return "tenants"
}
