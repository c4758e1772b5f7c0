package timesheet

import (
	"errors"
	"fmt"
	"math"
	"timewheel/account"
	"timewheel/bizerror"
	"timewheel/domain"
	"timewheel/domain/assignment"
	"timewheel/domain/planner"
	"timewheel/idgen"
	"timewheel/notification"
	"timewheel/persistence"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	timesheetIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CurrentTimestampFunc = types.CurrentTimestamp

	ToggleTimerFunc            = ToggleTimer
	TogglePauseFunc            = TogglePause
	QueryRunningTimesheetsFunc = QueryRunningTimesheets
	QueryTimesheetsFunc        = QueryTimesheets

	// IndexTimesheetsFunc feeds stopped/reviewed timesheets into the report
	// index; bound by the reports package at bootstrap, no-op by default.
	IndexTimesheetsFunc = func(timesheets []Timesheet) {}
)

// ToggleTimer starts a timer on the job when the caller has no running
// session on it, and stops the running session otherwise. The assignment
// row is locked for the whole transaction, so concurrent toggles on the
// same (job, user) pair serialize instead of diverging.
func ToggleTimer(req TimerToggleRequest, s *session.Session) (*TimerToggleResult, error) {
	var result *TimerToggleResult
	var stopped *Timesheet
	var job *domain.Job

	db := persistence.ActiveDataSourceManager.GormDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		j, err := assignment.FindJobAndCheckPermsFunc(tx, req.JobID, s)
		if err != nil {
			return err
		}
		job = j

		a, err := assignment.EnsureAssignmentFunc(tx, j, s.Identity.ID)
		if err != nil {
			return err
		}

		running, err := findRunningTimesheet(tx, a.ID)
		if err != nil {
			return err
		}

		if running == nil {
			ts, err := startTimer(tx, a)
			if err != nil {
				return err
			}
			result = &TimerToggleResult{Status: TimerStarted, Timesheet: *ts}
			return nil
		}

		ts, err := stopTimer(tx, running, req.Description)
		if err != nil {
			return err
		}
		result = &TimerToggleResult{Status: TimerStopped, Timesheet: *ts}
		stopped = ts
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if stopped != nil {
		afterStop(stopped, job, s)
	}
	return result, nil
}

// TogglePause pauses the running session of the caller on the job, or
// resumes it when already paused. Without a running session the toggle
// is an invalid transition.
func TogglePause(req PauseToggleRequest, s *session.Session) (*PauseToggleResult, error) {
	var result *PauseToggleResult

	db := persistence.ActiveDataSourceManager.GormDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		j, err := assignment.FindJobAndCheckPermsFunc(tx, req.JobID, s)
		if err != nil {
			return err
		}

		a := assignment.Assignment{}
		err = tx.Set("gorm:query_option", "FOR UPDATE").
			Where(&assignment.Assignment{JobID: j.ID, UserID: s.Identity.ID}).First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrInvalidTransition
		} else if err != nil {
			return err
		}

		ts, err := findRunningTimesheet(tx, a.ID)
		if err != nil {
			return err
		}
		if ts == nil {
			return bizerror.ErrInvalidTransition
		}

		now := CurrentTimestampFunc()
		if !ts.IsPaused {
			ts.IsPaused = true
			ts.LastPauseStart = now
			result = &PauseToggleResult{Status: TimerPaused}
		} else {
			foldPause(ts, now)
			result = &PauseToggleResult{Status: TimerResumed}
		}

		if err := tx.Save(ts).Error; err != nil {
			return err
		}
		result.Timesheet = *ts
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

func findRunningTimesheet(tx *gorm.DB, assignmentId types.ID) (*Timesheet, error) {
	ts := Timesheet{}
	err := tx.Where("assignment_id = ? AND end_time = ?", assignmentId, types.Timestamp{}).First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &ts, nil
}

func startTimer(tx *gorm.DB, a *assignment.Assignment) (*Timesheet, error) {
	ts := Timesheet{
		ID:           idgen.NextID(timesheetIdWorker),
		AssignmentID: a.ID,
		JobID:        a.JobID,
		UserID:       a.UserID,
		TenantID:     a.TenantID,

		StartTime: CurrentTimestampFunc(),
		Status:    ReviewStatusPending,
	}
	if err := tx.Create(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func stopTimer(tx *gorm.DB, ts *Timesheet, description string) (*Timesheet, error) {
	now := CurrentTimestampFunc()

	// an in-flight pause counts even though the user never resumed
	if ts.IsPaused {
		foldPause(ts, now)
	}

	elapsed := roundMinutes(ts.StartTime, now)
	duration := elapsed - ts.TotalPausedMinutes
	if duration < 0 {
		duration = 0
	}

	ts.DurationMinutes = duration
	ts.EndTime = now
	ts.Status = ReviewStatusPending
	ts.Description = description

	if err := tx.Save(ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

func foldPause(ts *Timesheet, now types.Timestamp) {
	ts.TotalPausedMinutes += roundMinutes(ts.LastPauseStart, now)
	ts.IsPaused = false
	ts.LastPauseStart = types.Timestamp{}
}

// roundMinutes rounds each interval independently, half up.
func roundMinutes(from, to types.Timestamp) int {
	return int(math.Round(to.Time().Sub(from.Time()).Minutes()))
}

// afterStop runs the non-transactional side effects of a stop. None of
// them may fail the stop itself: the timesheet row is already final.
func afterStop(ts *Timesheet, job *domain.Job, s *session.Session) {
	if err := planner.SyncDayFunc(ts.JobID, ts.UserID, ts.EndTime.Time()); err != nil {
		logrus.Errorf("planner sync failed for timesheet %v: %v", ts.ID, err)
	}

	notifySubmitted(ts, job, s)

	IndexTimesheetsFunc([]Timesheet{*ts})
}

func notifySubmitted(ts *Timesheet, job *domain.Job, s *session.Session) {
	managers, err := account.FindTenantManagersFunc(ts.TenantID)
	if err != nil {
		logrus.Errorf("failed to resolve managers of tenant %v: %v", ts.TenantID, err)
		return
	}

	notifications := []notification.Notification{}
	for _, m := range managers {
		if m.ID == ts.UserID {
			continue
		}
		notifications = append(notifications, notification.Notification{
			ReceiverId: m.ID,
			Title:      "New timesheet",
			Message:    fmt.Sprintf("%s tracked %d minutes on job %s", s.Identity.Name, ts.DurationMinutes, job.Name),
			Link:       fmt.Sprintf("/jobs/%s/timesheets/%s", ts.JobID.String(), ts.ID.String()),
			SourceType: notification.SourceTypeTimesheet,
			SourceId:   ts.ID,
		})
	}
	if len(notifications) == 0 {
		return
	}

	records, err := notification.CreateNotificationsFunc(notifications, &s.Identity, persistence.ActiveDataSourceManager.GormDB())
	if err != nil {
		logrus.Errorf("failed to create timesheet notifications: %v", err)
		return
	}
	notification.InvokeHandlersFunc(records...)
}

// QueryRunningTimesheets lists the caller's running sessions across jobs.
func QueryRunningTimesheets(s *session.Session) ([]Timesheet, error) {
	records := []Timesheet{}
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Where("user_id = ? AND end_time = ?", s.Identity.ID, types.Timestamp{}).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// QueryTimesheets lists a job's timesheets for review, manager only.
func QueryTimesheets(query TimesheetsQuery, s *session.Session) ([]Timesheet, error) {
	records := []Timesheet{}
	db := persistence.ActiveDataSourceManager.GormDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		job, err := assignment.FindJobAndCheckPermsFunc(tx, query.JobID, s)
		if err != nil {
			return err
		}
		if !s.Perms.HasRole(account.SystemAdminPermission.ID) &&
			!s.Perms.HasRole(fmt.Sprintf("%s_%d", domain.TenantRoleManager, job.TenantID)) {
			return bizerror.ErrForbidden
		}

		q := tx.Where(&Timesheet{JobID: job.ID, Status: query.Status})
		return q.Order("start_time ASC").Find(&records).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return records, nil
}
