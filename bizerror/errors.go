package bizerror

import "net/http"

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type CommonBizError struct {
	Status  int
	Code    string
	Message string
}

func (e *CommonBizError) Error() string {
	return e.Message
}

func (e *CommonBizError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: e.Status, Code: e.Code, Message: e.Message}
}

var (
	ErrUnauthenticated = &CommonBizError{Status: http.StatusUnauthorized, Code: "common.unauthenticated", Message: "unauthenticated"}
	ErrForbidden       = &CommonBizError{Status: http.StatusForbidden, Code: "security.forbidden", Message: "access forbidden"}

	// ErrNotAssignedOrJobNotFound: the job does not exist, or exists outside the caller's tenant.
	// The two cases are deliberately indistinguishable to the caller.
	ErrNotAssignedOrJobNotFound = &CommonBizError{Status: http.StatusNotFound, Code: "timesheet.not_assigned_or_job_not_found",
		Message: "job not found or caller not assigned"}

	ErrInvalidTransition = &CommonBizError{Status: http.StatusConflict, Code: "timesheet.invalid_transition",
		Message: "operation not valid in current timer state"}

	ErrConcurrencyConflict = &CommonBizError{Status: http.StatusConflict, Code: "common.concurrency_conflict",
		Message: "concurrent modification detected, retry the operation"}
)

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message}
}
