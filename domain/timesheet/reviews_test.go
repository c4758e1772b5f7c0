package timesheet_test

import (
	"time"
	"timewheel/account"
	"timewheel/bizerror"
	"timewheel/domain"
	"timewheel/domain/assignment"
	"timewheel/domain/budget"
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

var _ = Describe("ReviewTimesheet", func() {
	var (
		testDatabase *testinfra.TestDatabase
		db           *gorm.DB

		worker *account.User
		tenant *domain.Tenant
		job    *domain.Job
		assn   *assignment.Assignment

		managerSession *session.Session
	)

	stoppedTimesheet := func(id types.ID, minutes int) *timesheet.Timesheet {
		start := types.TimestampOfDate(2021, time.June, 1, 9, 0, 0, 0, time.Local)
		ts := &timesheet.Timesheet{
			ID: id, AssignmentID: assn.ID, JobID: job.ID, UserID: worker.ID, TenantID: tenant.ID,
			StartTime: start, EndTime: types.Timestamp(start.Time().Add(time.Duration(minutes) * time.Minute)),
			DurationMinutes: minutes, Status: timesheet.ReviewStatusPending,
		}
		Expect(db.Create(ts).Error).To(BeNil())
		return ts
	}

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("timewheel")
		persistence.ActiveDataSourceManager = testDatabase.DS
		db = testDatabase.DS.GormDB()
		Expect(db.AutoMigrate(
			&domain.Tenant{}, &domain.TenantMember{}, &domain.Job{}, &account.User{},
			&assignment.Assignment{}, &timesheet.Timesheet{},
			&budget.BudgetItem{}, &notification.NotificationRecord{}).Error).To(BeNil())

		tenant = &domain.Tenant{ID: 100, Name: "test agency", CreateTime: types.CurrentTimestamp()}
		Expect(db.Save(tenant).Error).To(BeNil())

		worker = &account.User{ID: 10, Name: "worker", Secret: "123", DefaultHourlyRate: 40}
		Expect(db.Save(worker).Error).To(BeNil())

		job = &domain.Job{ID: 20, TenantID: tenant.ID, Identifier: "CAM-1", Name: "spring campaign",
			CreateTime: types.CurrentTimestamp()}
		Expect(db.Save(job).Error).To(BeNil())

		assn = &assignment.Assignment{ID: 30, JobID: job.ID, UserID: worker.ID, TenantID: tenant.ID,
			Role: domain.TenantRoleMember, CreateTime: types.CurrentTimestamp()}
		Expect(db.Save(assn).Error).To(BeNil())

		managerSession = testinfra.BuildSession(11, "manager_100")
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	It("should post a budget item with the hourly model on approval", func() {
		ts := stoppedTimesheet(1000, 180)

		reviewed, err := timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(BeNil())
		Expect(reviewed.Status).To(Equal(timesheet.ReviewStatusApproved))

		items := []budget.BudgetItem{}
		Expect(db.Find(&items).Error).To(BeNil())
		Expect(len(items)).To(Equal(1))
		Expect(items[0].TimesheetID).To(Equal(ts.ID))
		Expect(items[0].JobID).To(Equal(job.ID))
		Expect(items[0].CostKind).To(Equal(domain.CostKindHourly))
		Expect(items[0].Hours).To(Equal(3.0))
		Expect(items[0].Rate).To(Equal(40.0))
		Expect(items[0].Amount).To(Equal(120.0))
		Expect(items[0].CostRate).To(Equal(40.0))
		Expect(items[0].CostAmount).To(Equal(120.0))
	})

	It("should charge the task model as a fixed fee", func() {
		Expect(db.Model(&assignment.Assignment{}).Where("id = ?", assn.ID).
			Updates(map[string]interface{}{"cost_kind": domain.CostKindTask, "cost_value": 200.0}).Error).To(BeNil())
		ts := stoppedTimesheet(1000, 180)

		_, err := timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(BeNil())

		items := []budget.BudgetItem{}
		Expect(db.Find(&items).Error).To(BeNil())
		Expect(len(items)).To(Equal(1))
		Expect(items[0].CostKind).To(Equal(domain.CostKindTask))
		Expect(items[0].Hours).To(Equal(3.0))
		Expect(items[0].Amount).To(Equal(200.0))
		// internal cost always follows the user defaults
		Expect(items[0].CostRate).To(Equal(40.0))
		Expect(items[0].CostAmount).To(Equal(120.0))
	})

	It("should keep a single budget item across repeated approvals", func() {
		ts := stoppedTimesheet(1000, 60)

		_, err := timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(BeNil())
		_, err = timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusRejected, managerSession)
		Expect(err).To(BeNil())
		_, err = timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(BeNil())

		var count int
		Expect(db.Model(&budget.BudgetItem{}).Count(&count).Error).To(BeNil())
		Expect(count).To(Equal(1))
	})

	It("should not post a budget item on rejection", func() {
		ts := stoppedTimesheet(1000, 60)

		reviewed, err := timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusRejected, managerSession)
		Expect(err).To(BeNil())
		Expect(reviewed.Status).To(Equal(timesheet.ReviewStatusRejected))

		var count int
		Expect(db.Model(&budget.BudgetItem{}).Count(&count).Error).To(BeNil())
		Expect(count).To(BeZero())
	})

	It("should keep the budget item when a rejection follows an approval", func() {
		ts := stoppedTimesheet(1000, 60)

		_, err := timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(BeNil())
		reviewed, err := timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusRejected, managerSession)
		Expect(err).To(BeNil())
		Expect(reviewed.Status).To(Equal(timesheet.ReviewStatusRejected))

		var count int
		Expect(db.Model(&budget.BudgetItem{}).Count(&count).Error).To(BeNil())
		Expect(count).To(Equal(1))
	})

	It("should notify the worker once per effective review", func() {
		ts := stoppedTimesheet(1000, 60)

		_, err := timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(BeNil())
		// same status again is a no-op and stays silent
		_, err = timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(BeNil())

		records := []notification.NotificationRecord{}
		Expect(db.Find(&records).Error).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].ReceiverId).To(Equal(worker.ID))
		Expect(records[0].SourceId).To(Equal(ts.ID))
	})

	It("should refuse reviewers outside the manager role", func() {
		ts := stoppedTimesheet(1000, 60)

		_, err := timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved,
			testinfra.BuildSession(worker.ID, "member_100"))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		_, err = timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved,
			testinfra.BuildSession(12, "manager_999"))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		// system admins may review any tenant
		_, err = timesheet.ReviewTimesheet(ts.ID, timesheet.ReviewStatusApproved,
			testinfra.BuildSession(13, account.SystemAdminPermission.ID))
		Expect(err).To(BeNil())
	})

	It("should refuse to review a running session", func() {
		running := &timesheet.Timesheet{
			ID: 1001, AssignmentID: assn.ID, JobID: job.ID, UserID: worker.ID, TenantID: tenant.ID,
			StartTime: types.CurrentTimestamp(), Status: timesheet.ReviewStatusPending,
		}
		Expect(db.Create(running).Error).To(BeNil())

		_, err := timesheet.ReviewTimesheet(running.ID, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(Equal(bizerror.ErrInvalidTransition))
	})

	It("should reject statuses outside the review vocabulary", func() {
		_, err := timesheet.ReviewTimesheet(1000, timesheet.ReviewStatusPending, managerSession)
		Expect(err).ToNot(BeNil())
		_, badParam := err.(*bizerror.ErrBadParam)
		Expect(badParam).To(BeTrue())
	})

	It("should surface missing timesheets as record not found", func() {
		_, err := timesheet.ReviewTimesheet(404, timesheet.ReviewStatusApproved, managerSession)
		Expect(err).To(Equal(gorm.ErrRecordNotFound))
	})
})
