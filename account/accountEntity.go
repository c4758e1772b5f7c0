package account

import (
	"timewheel/domain"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	Secret string   `json:"secret"`

	Nickname string `json:"nickname"`

	// default billing rates, used when an assignment carries no cost override
	DefaultHourlyRate float64 `json:"defaultHourlyRate" sql:"type:DECIMAL(10,2)"`
	DefaultTaskRate   float64 `json:"defaultTaskRate" sql:"type:DECIMAL(10,2)"`
}

func (u *User) TableName() string {
	return "users"
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

// DefaultCostModel resolves the user-level fallback billing model.
// An hourly rate wins over a task rate; the task rate applies only
// when no hourly rate is configured.
func (u *User) DefaultCostModel() (domain.CostKind, float64) {
	if u.DefaultHourlyRate > 0 {
		return domain.CostKindHourly, u.DefaultHourlyRate
	}
	if u.DefaultTaskRate > 0 {
		return domain.CostKindTask, u.DefaultTaskRate
	}
	return domain.CostKindHourly, 0
}
