package planner

import (
	"errors"
	"time"
	"timewheel/idgen"
	"timewheel/persistence"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	plannerIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SyncDayFunc             = SyncDay
	QueryPlannerEntriesFunc = QueryPlannerEntries
)

const dayFormat = "2006-01-02"

// stoppedSession is the projection of a timesheet row the sync needs.
// The raw table query keeps this package independent of the timesheet
// package, which invokes the sync.
type stoppedSession struct {
	DurationMinutes int
	EndTime         types.Timestamp
}

// SyncDay recomputes the planner entry of (user, job) for the local day of
// `at` from all stopped timesheets started that day, and upserts it. The
// result always reflects the total, making repeated syncs idempotent.
func SyncDay(jobId, userId types.ID, at time.Time) error {
	local := at.Local()
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	day := dayStart.Format(dayFormat)

	db := persistence.ActiveDataSourceManager.GormDB()
	return db.Transaction(func(tx *gorm.DB) error {
		var sessions []stoppedSession
		if err := tx.Table("timesheets").
			Select("duration_minutes, end_time").
			Where("user_id = ? AND job_id = ? AND start_time >= ? AND start_time < ?",
				userId, jobId, dayStart, dayEnd).
			Scan(&sessions).Error; err != nil {
			return err
		}

		total := 0
		for _, s := range sessions {
			if s.EndTime.Time().IsZero() {
				continue // still running
			}
			total += s.DurationMinutes
		}

		now := types.CurrentTimestamp()
		entry := PlannerEntry{}
		err := tx.Where(&PlannerEntry{UserID: userId, JobID: jobId, Day: day}).First(&entry).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = PlannerEntry{
				ID:         idgen.NextID(plannerIdWorker),
				UserID:     userId,
				JobID:      jobId,
				Day:        day,
				Title:      DefaultEntryTitle,
				CreateTime: now,
			}
		}

		entry.Minutes = total
		entry.IsDone = true
		entry.UpdateTime = now
		return tx.Save(&entry).Error
	})
}

type PlannerEntriesQuery struct {
	FromDay string `form:"fromDay" binding:"required"`
	ToDay   string `form:"toDay" binding:"required"`
}

// QueryPlannerEntries lists the caller's own entries in [fromDay, toDay].
func QueryPlannerEntries(query PlannerEntriesQuery, s *session.Session) ([]PlannerEntry, error) {
	records := []PlannerEntry{}
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Where("user_id = ? AND day >= ? AND day <= ?", s.Identity.ID, query.FromDay, query.ToDay).
		Order("day ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
