package budget

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
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	budgetItemIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SaveBudgetItemFunc   = SaveBudgetItem
	QueryBudgetItemsFunc = QueryBudgetItems
)

// BudgetPosting carries everything SaveBudgetItem needs; it is computed by
// the review procedure so the posting itself stays a plain upsert.
type BudgetPosting struct {
	TimesheetID types.ID
	JobID       types.ID
	UserID      types.ID
	TenantID    types.ID

	CostKind domain.CostKind
	Hours    float64
	Rate     float64
	Amount   float64

	CostRate   float64
	CostAmount float64
}

// SaveBudgetItem upserts the budget line keyed by timesheet id inside the
// caller's transaction.
func SaveBudgetItem(p *BudgetPosting, tx *gorm.DB) (*BudgetItem, error) {
	now := types.CurrentTimestamp()

	record := BudgetItem{}
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where(&BudgetItem{TimesheetID: p.TimesheetID}).First(&record).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = BudgetItem{
			ID:          idgen.NextID(budgetItemIdWorker),
			TimesheetID: p.TimesheetID,
			CreateTime:  now,
		}
	}

	record.JobID = p.JobID
	record.UserID = p.UserID
	record.TenantID = p.TenantID
	record.CostKind = p.CostKind
	record.Hours = p.Hours
	record.Rate = p.Rate
	record.Amount = p.Amount
	record.CostRate = p.CostRate
	record.CostAmount = p.CostAmount
	record.UpdateTime = now

	if err := tx.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryBudgetItems(jobId types.ID, s *session.Session) ([]BudgetItem, error) {
	db := persistence.ActiveDataSourceManager.GormDB()

	var records []BudgetItem
	txErr := db.Transaction(func(tx *gorm.DB) error {
		job := domain.Job{ID: jobId}
		if err := tx.Where(&job).First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotAssignedOrJobNotFound
			}
			return err
		}
		if !s.Perms.HasRole(account.SystemAdminPermission.ID) &&
			!s.Perms.HasRole(fmt.Sprintf("%s_%d", domain.TenantRoleManager, job.TenantID)) {
			return bizerror.ErrForbidden
		}
		return tx.Where(&BudgetItem{JobID: job.ID}).Order("create_time ASC").Find(&records).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return records, nil
}
