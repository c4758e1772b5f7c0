package account

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"timewheel/authority"
	"timewheel/domain"
	"timewheel/persistence"

	"github.com/fundwit/go-commons/types"
)

type Permission struct {
	ID    string `json:"id" gorm:"primary_key"`
	Title string `json:"title"`
}

var (
	SystemAdminPermission = Permission{ID: "system:admin", Title: "System Administration"}
)

var (
	LoadPermFunc           = loadPerms
	FindUserFunc           = FindUser
	FindTenantManagersFunc = FindTenantManagers
)

func LoadPermFuncReset() {
	LoadPermFunc = loadPerms
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// tenant membership is the metadata source of tenant-scoped permissions:
// each membership contributes a "<role>_<tenantId>" perm and a tenant role
func loadPerms(uid types.ID) (authority.Permissions, authority.TenantRoles) {
	perms := authority.Permissions{}
	tenantRoles := authority.TenantRoles{}

	db := persistence.ActiveDataSourceManager.GormDB()

	var memberships []domain.TenantMember
	if err := db.Where(&domain.TenantMember{UserID: uid}).Find(&memberships).Error; err != nil {
		panic(err)
	}

	for _, m := range memberships {
		perms = append(perms, fmt.Sprintf("%s_%d", m.Role, m.TenantID))

		tenant := domain.Tenant{ID: m.TenantID}
		if err := db.Where(&tenant).First(&tenant).Error; err != nil {
			panic(err)
		}
		tenantRoles = append(tenantRoles, domain.TenantRole{TenantID: m.TenantID, TenantName: tenant.Name, Role: m.Role})
	}

	return perms, tenantRoles
}

func FindUser(uid types.ID) (*User, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	user := User{ID: uid}
	if err := db.Where(&user).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindTenantManagers lists the users holding the manager role on a tenant.
func FindTenantManagers(tenantId types.ID) ([]User, error) {
	db := persistence.ActiveDataSourceManager.GormDB()

	var memberships []domain.TenantMember
	if err := db.Where(&domain.TenantMember{TenantID: tenantId, Role: domain.TenantRoleManager}).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []User{}, nil
	}

	userIds := make([]types.ID, 0, len(memberships))
	for _, m := range memberships {
		userIds = append(userIds, m.UserID)
	}

	var users []User
	if err := db.Where("id IN (?)", userIds).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
