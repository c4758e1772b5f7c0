package notification

import (
	"timewheel/bizerror"
	"timewheel/idgen"
	"timewheel/persistence"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	notificationIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateNotificationsFunc       = CreateNotifications
	ListNotificationsFunc         = ListNotifications
	MarkNotificationReadFunc      = MarkNotificationRead
	NotificationPersistCreateFunc = notificationPersistCreate
)

// CreateNotifications persists one record per notification and returns them.
// Delivery to external channels happens through the registered handlers,
// which the caller invokes after its own transaction committed.
func CreateNotifications(notifications []Notification, identity *session.Identity, db *gorm.DB) ([]NotificationRecord, error) {
	records := make([]NotificationRecord, 0, len(notifications))
	now := types.CurrentTimestamp()
	for _, n := range notifications {
		record := NotificationRecord{
			ID:           idgen.NextID(notificationIdWorker),
			Notification: n,

			CreatorId:   identity.ID,
			CreatorName: identity.Name,

			Read:      false,
			Timestamp: now,
		}
		if err := NotificationPersistCreateFunc(&record, db); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func notificationPersistCreate(record *NotificationRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

func ListNotifications(s *session.Session) ([]NotificationRecord, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	records := []NotificationRecord{}
	if err := db.Where(&NotificationRecord{Notification: Notification{ReceiverId: s.Identity.ID}}).
		Order("timestamp DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func MarkNotificationRead(id types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	return db.Transaction(func(tx *gorm.DB) error {
		record := NotificationRecord{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		if record.ReceiverId != s.Identity.ID {
			return bizerror.ErrForbidden
		}
		if record.Read {
			return nil
		}
		return tx.Model(&NotificationRecord{ID: id}).Update("read", true).Error
	})
}
