package timesheet

import (
	"fmt"
	"timewheel/account"
	"timewheel/bizerror"
	"timewheel/domain"
	"timewheel/domain/assignment"
	"timewheel/domain/budget"
	"timewheel/notification"
	"timewheel/persistence"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var ReviewTimesheetFunc = ReviewTimesheet

// ReviewTimesheet moves a stopped timesheet to APPROVED or REJECTED.
// Approval derives the billable amount and upserts the budget line in the
// same transaction as the status change. Re-reviewing to the current
// status is a no-op and raises no second notification.
func ReviewTimesheet(timesheetId types.ID, newStatus ReviewStatus, s *session.Session) (*Timesheet, error) {
	if newStatus != ReviewStatusApproved && newStatus != ReviewStatusRejected {
		return nil, &bizerror.ErrBadParam{Cause: fmt.Errorf("unknown review status %q", newStatus)}
	}

	var record Timesheet
	var noop bool

	db := persistence.ActiveDataSourceManager.GormDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		ts := Timesheet{ID: timesheetId}
		if err := tx.Set("gorm:query_option", "FOR UPDATE").Where(&ts).First(&ts).Error; err != nil {
			return err
		}

		if !s.Perms.HasRole(account.SystemAdminPermission.ID) &&
			!s.Perms.HasRole(fmt.Sprintf("%s_%d", domain.TenantRoleManager, ts.TenantID)) {
			return bizerror.ErrForbidden
		}

		if ts.IsRunning() {
			return bizerror.ErrInvalidTransition
		}

		if ts.Status == newStatus {
			noop = true
			record = ts
			return nil
		}

		if newStatus == ReviewStatusApproved {
			if err := postBudgetItem(tx, &ts); err != nil {
				return err
			}
		}
		// rejection after an earlier approval keeps the posted budget item
		// untouched; retraction is deliberately not implemented

		if err := tx.Model(&Timesheet{}).Where("id = ?", ts.ID).
			Update("status", newStatus).Error; err != nil {
			return err
		}
		ts.Status = newStatus
		record = ts
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if !noop {
		notifyReviewed(&record, s)
		IndexTimesheetsFunc([]Timesheet{record})
	}
	return &record, nil
}

func postBudgetItem(tx *gorm.DB, ts *Timesheet) error {
	a := assignment.Assignment{ID: ts.AssignmentID}
	if err := tx.Where(&a).First(&a).Error; err != nil {
		return err
	}
	user := account.User{ID: ts.UserID}
	if err := tx.Where(&user).First(&user).Error; err != nil {
		return err
	}

	kind, rate := resolveCostModel(&a, &user)
	hours := float64(ts.DurationMinutes) / 60

	// task model is a fixed fee: hours stay recorded for reporting only
	amount := rate
	if kind == domain.CostKindHourly {
		amount = hours * rate
	}

	costKind, costRate := user.DefaultCostModel()
	costAmount := costRate
	if costKind == domain.CostKindHourly {
		costAmount = hours * costRate
	}

	_, err := budget.SaveBudgetItemFunc(&budget.BudgetPosting{
		TimesheetID: ts.ID,
		JobID:       ts.JobID,
		UserID:      ts.UserID,
		TenantID:    ts.TenantID,

		CostKind: kind,
		Hours:    hours,
		Rate:     rate,
		Amount:   amount,

		CostRate:   costRate,
		CostAmount: costAmount,
	}, tx)
	return err
}

// resolveCostModel prefers the assignment override, then falls back to the
// user's default rates.
func resolveCostModel(a *assignment.Assignment, user *account.User) (domain.CostKind, float64) {
	if a.CostKind.IsValid() {
		return a.CostKind, a.CostValue
	}
	return user.DefaultCostModel()
}

func notifyReviewed(ts *Timesheet, s *session.Session) {
	verb := "approved"
	if ts.Status == ReviewStatusRejected {
		verb = "rejected"
	}

	records, err := notification.CreateNotificationsFunc([]notification.Notification{{
		ReceiverId: ts.UserID,
		Title:      "Timesheet " + verb,
		Message:    fmt.Sprintf("%s %s your timesheet of %d minutes", s.Identity.Name, verb, ts.DurationMinutes),
		Link:       fmt.Sprintf("/jobs/%s/timesheets/%s", ts.JobID.String(), ts.ID.String()),
		SourceType: notification.SourceTypeTimesheet,
		SourceId:   ts.ID,
	}}, &s.Identity, persistence.ActiveDataSourceManager.GormDB())
	if err != nil {
		logrus.Errorf("failed to create review notification for timesheet %v: %v", ts.ID, err)
		return
	}
	notification.InvokeHandlersFunc(records...)
}
