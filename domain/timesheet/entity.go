package timesheet

import (
	"github.com/fundwit/go-commons/types"
)

type ReviewStatus string

const (
	ReviewStatusPending  = ReviewStatus("PENDING")
	ReviewStatusApproved = ReviewStatus("APPROVED")
	ReviewStatusRejected = ReviewStatus("REJECTED")
)

// Timesheet is one timed work session of an assignment. A zero EndTime
// means the session is still running; all pause bookkeeping fields are
// frozen once EndTime is set.
type Timesheet struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	AssignmentID types.ID `json:"assignmentId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	JobID        types.ID `json:"jobId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID       types.ID `json:"userId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TenantID     types.ID `json:"tenantId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	StartTime types.Timestamp `json:"startTime" sql:"type:DATETIME(6) NOT NULL"`
	EndTime   types.Timestamp `json:"endTime" sql:"type:DATETIME(6) NOT NULL"`

	IsPaused           bool            `json:"isPaused"`
	LastPauseStart     types.Timestamp `json:"lastPauseStart" sql:"type:DATETIME(6) NOT NULL"`
	TotalPausedMinutes int             `json:"totalPausedMinutes"`

	DurationMinutes int `json:"durationMinutes"`

	Status      ReviewStatus `json:"status" sql:"type:VARCHAR(16) NOT NULL"`
	Description string       `json:"description" sql:"type:TEXT"`
}

func (t *Timesheet) TableName() string {
	return "timesheets"
}

func (t *Timesheet) IsRunning() bool {
	return t.EndTime.Time().IsZero()
}

const (
	TimerStarted = "started"
	TimerStopped = "stopped"
	TimerPaused  = "paused"
	TimerResumed = "resumed"
)

type TimerToggleRequest struct {
	JobID       types.ID `json:"jobId" binding:"required"`
	Description string   `json:"description"`
}

type TimerToggleResult struct {
	Status    string    `json:"status"` // started, stopped
	Timesheet Timesheet `json:"timesheet"`
}

type PauseToggleRequest struct {
	JobID types.ID `json:"jobId" binding:"required"`
}

type PauseToggleResult struct {
	Status    string    `json:"status"` // paused, resumed
	Timesheet Timesheet `json:"timesheet"`
}

type TimesheetsQuery struct {
	JobID  types.ID     `form:"jobId" binding:"required"`
	Status ReviewStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

type TimesheetReviewRequest struct {
	Status ReviewStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}
