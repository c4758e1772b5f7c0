package notification

import (
	"github.com/fundwit/go-commons/types"
)

const (
	SourceTypeTimesheet = "TIMESHEET"
)

type Notification struct {
	ReceiverId types.ID `json:"receiverId"`

	Title   string `json:"title"`
	Message string `json:"message" sql:"type:TEXT"`
	Link    string `json:"link"`

	SourceType string   `json:"sourceType"`
	SourceId   types.ID `json:"sourceId"`
}

type NotificationRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Notification

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	Read      bool            `json:"read"`
	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *NotificationRecord) TableName() string {
	return "notifications"
}
