package timesheet_test

import (
	"time"
	"timewheel/account"
	"timewheel/bizerror"
	"timewheel/domain"
	"timewheel/domain/assignment"
	"timewheel/domain/budget"
	"timewheel/domain/planner"
	"timewheel/domain/timesheet"
	"timewheel/notification"
	"timewheel/persistence"
	"timewheel/session"
	"timewheel/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Timesheets", func() {
	var (
		testDatabase *testinfra.TestDatabase
		db           *gorm.DB

		worker  *account.User
		manager *account.User
		tenant  *domain.Tenant
		job     *domain.Job

		workerSession *session.Session
	)

	at := func(year int, month time.Month, day, hour, min, sec int) types.Timestamp {
		return types.TimestampOfDate(year, month, day, hour, min, sec, 0, time.Local)
	}
	clockAt := func(ts types.Timestamp) {
		timesheet.CurrentTimestampFunc = func() types.Timestamp { return ts }
	}

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("timewheel")
		persistence.ActiveDataSourceManager = testDatabase.DS
		db = testDatabase.DS.GormDB()
		Expect(db.AutoMigrate(
			&domain.Tenant{}, &domain.TenantMember{}, &domain.Job{}, &account.User{},
			&assignment.Assignment{}, &timesheet.Timesheet{},
			&budget.BudgetItem{}, &planner.PlannerEntry{},
			&notification.NotificationRecord{}).Error).To(BeNil())

		tenant = &domain.Tenant{ID: 100, Name: "test agency", CreateTime: types.CurrentTimestamp()}
		Expect(db.Save(tenant).Error).To(BeNil())

		worker = &account.User{ID: 10, Name: "worker", Secret: "123"}
		Expect(db.Save(worker).Error).To(BeNil())
		manager = &account.User{ID: 11, Name: "manager", Secret: "123"}
		Expect(db.Save(manager).Error).To(BeNil())

		Expect(db.Save(&domain.TenantMember{ID: 1, TenantID: tenant.ID, UserID: worker.ID,
			Role: domain.TenantRoleMember, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Save(&domain.TenantMember{ID: 2, TenantID: tenant.ID, UserID: manager.ID,
			Role: domain.TenantRoleManager, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		job = &domain.Job{ID: 20, TenantID: tenant.ID, Identifier: "CAM-1", Name: "spring campaign",
			CreateTime: types.CurrentTimestamp()}
		Expect(db.Save(job).Error).To(BeNil())

		workerSession = testinfra.BuildSession(worker.ID, "member_100")
	})
	AfterEach(func() {
		timesheet.CurrentTimestampFunc = types.CurrentTimestamp
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("ToggleTimer", func() {
		It("should start a timer when no session is running", func() {
			clockAt(at(2021, 6, 1, 9, 0, 0))
			result, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(result.Status).To(Equal(timesheet.TimerStarted))
			Expect(result.Timesheet.IsRunning()).To(BeTrue())
			Expect(result.Timesheet.Status).To(Equal(timesheet.ReviewStatusPending))
			Expect(result.Timesheet.TotalPausedMinutes).To(BeZero())
			Expect(result.Timesheet.IsPaused).To(BeFalse())

			// the assignment is auto-created with the default role
			a := assignment.Assignment{}
			Expect(db.Where(&assignment.Assignment{JobID: job.ID, UserID: worker.ID}).First(&a).Error).To(BeNil())
			Expect(a.Role).To(Equal(domain.TenantRoleMember))
			Expect(result.Timesheet.AssignmentID).To(Equal(a.ID))
		})

		It("should keep a single active session per assignment", func() {
			clockAt(at(2021, 6, 1, 9, 0, 0))
			first, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(first.Status).To(Equal(timesheet.TimerStarted))

			// second toggle stops instead of starting a second session
			clockAt(at(2021, 6, 1, 9, 30, 0))
			second, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(second.Status).To(Equal(timesheet.TimerStopped))
			Expect(second.Timesheet.ID).To(Equal(first.Timesheet.ID))

			var count int
			Expect(db.Model(&timesheet.Timesheet{}).
				Where("assignment_id = ? AND end_time = ?", first.Timesheet.AssignmentID, types.Timestamp{}).
				Count(&count).Error).To(BeNil())
			Expect(count).To(BeZero())
		})

		It("should compute duration net of completed pauses", func() {
			t0 := at(2021, 6, 1, 9, 0, 0)
			clockAt(t0)
			_, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())

			clockAt(at(2021, 6, 1, 9, 10, 0))
			paused, err := timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(paused.Status).To(Equal(timesheet.TimerPaused))
			Expect(paused.Timesheet.IsPaused).To(BeTrue())
			Expect(paused.Timesheet.LastPauseStart.Time().IsZero()).To(BeFalse())

			clockAt(at(2021, 6, 1, 9, 15, 0))
			resumed, err := timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(resumed.Status).To(Equal(timesheet.TimerResumed))
			Expect(resumed.Timesheet.IsPaused).To(BeFalse())
			Expect(resumed.Timesheet.TotalPausedMinutes).To(Equal(5))
			Expect(resumed.Timesheet.LastPauseStart.Time().IsZero()).To(BeTrue())

			clockAt(at(2021, 6, 1, 9, 25, 0))
			stopped, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID, Description: "banner drafts"}, workerSession)
			Expect(err).To(BeNil())
			Expect(stopped.Status).To(Equal(timesheet.TimerStopped))
			Expect(stopped.Timesheet.TotalPausedMinutes).To(Equal(5))
			Expect(stopped.Timesheet.DurationMinutes).To(Equal(20))
			Expect(stopped.Timesheet.Description).To(Equal("banner drafts"))
			Expect(stopped.Timesheet.Status).To(Equal(timesheet.ReviewStatusPending))
		})

		It("should fold an in-flight pause on stop", func() {
			clockAt(at(2021, 6, 1, 9, 0, 0))
			_, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())

			clockAt(at(2021, 6, 1, 9, 10, 0))
			_, err = timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())

			// stop without resuming at T0+18m
			clockAt(at(2021, 6, 1, 9, 18, 0))
			stopped, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(stopped.Status).To(Equal(timesheet.TimerStopped))
			Expect(stopped.Timesheet.TotalPausedMinutes).To(Equal(8))
			Expect(stopped.Timesheet.DurationMinutes).To(Equal(10))
			Expect(stopped.Timesheet.IsPaused).To(BeFalse())
		})

		It("should floor the duration at zero", func() {
			clockAt(at(2021, 6, 1, 9, 0, 0))
			started, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())

			// clock skew puts accumulated pause beyond the elapsed time
			Expect(db.Model(&timesheet.Timesheet{}).Where("id = ?", started.Timesheet.ID).
				Update("total_paused_minutes", 90).Error).To(BeNil())

			clockAt(at(2021, 6, 1, 10, 0, 0))
			stopped, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(stopped.Timesheet.DurationMinutes).To(BeZero())
		})

		It("should reject jobs outside the caller's tenant", func() {
			otherJob := &domain.Job{ID: 21, TenantID: 999, Identifier: "OTH-1", Name: "foreign job",
				CreateTime: types.CurrentTimestamp()}
			Expect(db.Save(otherJob).Error).To(BeNil())

			result, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: otherJob.ID}, workerSession)
			Expect(result).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrNotAssignedOrJobNotFound))

			result, err = timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: 404}, workerSession)
			Expect(result).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrNotAssignedOrJobNotFound))
		})

		It("should notify tenant managers on stop", func() {
			clockAt(at(2021, 6, 1, 9, 0, 0))
			_, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			clockAt(at(2021, 6, 1, 9, 45, 0))
			stopped, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())

			records := []notification.NotificationRecord{}
			Expect(db.Find(&records).Error).To(BeNil())
			Expect(len(records)).To(Equal(1))
			Expect(records[0].ReceiverId).To(Equal(manager.ID))
			Expect(records[0].SourceType).To(Equal(notification.SourceTypeTimesheet))
			Expect(records[0].SourceId).To(Equal(stopped.Timesheet.ID))
			Expect(records[0].Read).To(BeFalse())
		})
	})

	Describe("TogglePause", func() {
		It("should be an invalid transition without a running session", func() {
			result, err := timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(result).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrInvalidTransition))

			// a stopped session does not make pause valid again
			clockAt(at(2021, 6, 1, 9, 0, 0))
			_, err = timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			clockAt(at(2021, 6, 1, 9, 30, 0))
			_, err = timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())

			result, err = timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(result).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrInvalidTransition))
		})

		It("should accumulate repeated pause intervals independently", func() {
			clockAt(at(2021, 6, 1, 9, 0, 0))
			_, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())

			// each interval rounds half up on its own: 2.5m -> 3, 1.5m -> 2
			clockAt(at(2021, 6, 1, 9, 10, 0))
			_, err = timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			clockAt(at(2021, 6, 1, 9, 12, 30))
			resumed, err := timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(resumed.Timesheet.TotalPausedMinutes).To(Equal(3))

			clockAt(at(2021, 6, 1, 9, 20, 0))
			_, err = timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			clockAt(at(2021, 6, 1, 9, 21, 30))
			resumed, err = timesheet.TogglePause(timesheet.PauseToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())
			Expect(resumed.Timesheet.TotalPausedMinutes).To(Equal(5))
		})
	})

	Describe("QueryRunningTimesheets", func() {
		It("should list only the caller's running sessions", func() {
			clockAt(at(2021, 6, 1, 9, 0, 0))
			started, err := timesheet.ToggleTimer(timesheet.TimerToggleRequest{JobID: job.ID}, workerSession)
			Expect(err).To(BeNil())

			records, err := timesheet.QueryRunningTimesheets(workerSession)
			Expect(err).To(BeNil())
			Expect(len(records)).To(Equal(1))
			Expect(records[0].ID).To(Equal(started.Timesheet.ID))

			records, err = timesheet.QueryRunningTimesheets(testinfra.BuildSession(manager.ID, "manager_100"))
			Expect(err).To(BeNil())
			Expect(records).To(BeEmpty())
		})
	})

	Describe("QueryTimesheets", func() {
		It("should be manager only", func() {
			_, err := timesheet.QueryTimesheets(timesheet.TimesheetsQuery{JobID: job.ID}, workerSession)
			Expect(err).To(Equal(bizerror.ErrForbidden))

			records, err := timesheet.QueryTimesheets(timesheet.TimesheetsQuery{JobID: job.ID},
				testinfra.BuildSession(manager.ID, "manager_100"))
			Expect(err).To(BeNil())
			Expect(records).To(BeEmpty())
		})
	})
})
