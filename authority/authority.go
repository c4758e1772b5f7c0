package authority

import (
	"strings"
	"timewheel/domain"

	"github.com/fundwit/go-commons/types"
)

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasGlobalViewRole() bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), "system:") {
			return true
		}
	}
	return false
}

func (c Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func (c Permissions) HasRoleSuffix(suffix string) bool {
	for _, v := range c {
		if strings.HasSuffix(strings.ToLower(v), strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func (c Permissions) HasTenantViewPerm(tenantId types.ID) bool {
	return c.HasGlobalViewRole() || c.HasRoleSuffix("_"+tenantId.String())
}

type TenantRoles []domain.TenantRole

func (c TenantRoles) HasTenant(tenantId types.ID) bool {
	for _, v := range c {
		if v.TenantID == tenantId {
			return true
		}
	}
	return false
}

func (c TenantRoles) HasTenantRole(tenantId types.ID, role string) bool {
	for _, v := range c {
		if v.TenantID == tenantId && strings.EqualFold(v.Role, role) {
			return true
		}
	}
	return false
}
