package assignment

import (
	"errors"
	"fmt"
	"timewheel/account"
	"timewheel/bizerror"
	"timewheel/domain"
	"timewheel/idgen"
	"timewheel/persistence"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	assignmentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	FindJobAndCheckPermsFunc = FindJobAndCheckPerms
	EnsureAssignmentFunc     = EnsureAssignment
	ListAssignmentsFunc      = ListAssignments
	UpdateAssignmentCostFunc = UpdateAssignmentCost
	DeleteAssignmentFunc     = DeleteAssignment

	// bound by the report index bootstrap
	CleanupTimesheetDocsFunc = func(timesheetIds []types.ID) {}
)

const mysqlDuplicateEntry = 1062

// FindJobAndCheckPerms loads the job and verifies the caller belongs to
// its tenant. A missing job and a tenant mismatch are indistinguishable
// to the caller.
func FindJobAndCheckPerms(tx *gorm.DB, jobId types.ID, s *session.Session) (*domain.Job, error) {
	job := domain.Job{ID: jobId}
	if err := tx.Where(&job).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotAssignedOrJobNotFound
		}
		return nil, err
	}
	if !s.Perms.HasTenantViewPerm(job.TenantID) {
		return nil, bizerror.ErrNotAssignedOrJobNotFound
	}
	return &job, nil
}

// EnsureAssignment returns the assignment of (job, user), creating it with
// the default role when absent. The returned row is locked for the rest of
// the transaction, serializing timer operations on the pair.
func EnsureAssignment(tx *gorm.DB, job *domain.Job, userId types.ID) (*Assignment, error) {
	a := Assignment{}
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where(&Assignment{JobID: job.ID, UserID: userId}).First(&a).Error
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	a = Assignment{
		ID:         idgen.NextID(assignmentIdWorker),
		JobID:      job.ID,
		UserID:     userId,
		TenantID:   job.TenantID,
		Role:       domain.TenantRoleMember,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := tx.Create(&a).Error; err != nil {
		if isDuplicateEntry(err) {
			return nil, bizerror.ErrConcurrencyConflict
		}
		return nil, err
	}
	return &a, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

func ListAssignments(jobId types.ID, s *session.Session) ([]Assignment, error) {
	var records []Assignment
	db := persistence.ActiveDataSourceManager.GormDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		job, err := FindJobAndCheckPermsFunc(tx, jobId, s)
		if err != nil {
			return err
		}
		return tx.Where(&Assignment{JobID: job.ID}).Find(&records).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return records, nil
}

func UpdateAssignmentCost(id types.ID, u AssignmentCostUpdating, s *session.Session) (*Assignment, error) {
	if u.CostKind != "" && !u.CostKind.IsValid() {
		return nil, &bizerror.ErrBadParam{Cause: fmt.Errorf("unknown cost kind %q", u.CostKind)}
	}

	var record Assignment
	db := persistence.ActiveDataSourceManager.GormDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		a := Assignment{ID: id}
		if err := tx.Where(&a).First(&a).Error; err != nil {
			return err
		}
		if err := checkManagerPerms(a.TenantID, s); err != nil {
			return err
		}

		updates := map[string]interface{}{"cost_kind": string(u.CostKind), "cost_value": u.CostValue}
		if err := tx.Model(&Assignment{}).Where(&Assignment{ID: id}).Updates(updates).Error; err != nil {
			return err
		}
		a.CostKind = u.CostKind
		a.CostValue = u.CostValue
		record = a
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// DeleteAssignment removes the assignment and all timesheets it owns.
func DeleteAssignment(id types.ID, s *session.Session) error {
	var timesheetIds []types.ID

	db := persistence.ActiveDataSourceManager.GormDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		a := Assignment{ID: id}
		if err := tx.Where(&a).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := checkManagerPerms(a.TenantID, s); err != nil {
			return err
		}

		if err := tx.Table("timesheets").Where("assignment_id = ?", a.ID).
			Pluck("id", &timesheetIds).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM timesheets WHERE assignment_id = ?", a.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&Assignment{}, "id = ?", a.ID).Error
	})
	if txErr != nil {
		return txErr
	}

	if len(timesheetIds) > 0 {
		CleanupTimesheetDocsFunc(timesheetIds)
	}
	return nil
}

func checkManagerPerms(tenantId types.ID, s *session.Session) error {
	if s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil
	}
	if !s.Perms.HasRole(fmt.Sprintf("%s_%d", domain.TenantRoleManager, tenantId)) {
		return bizerror.ErrForbidden
	}
	return nil
}
