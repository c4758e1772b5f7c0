package reports

import (
	"context"
	"encoding/json"
	"timewheel/account"
	"timewheel/bizerror"
	"timewheel/domain/assignment"
	"timewheel/domain/timesheet"
	"timewheel/es"
	"timewheel/persistence"
	"timewheel/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

const TimesheetIndexName = "timesheet_reports"

var (
	IndexTimesheetsFunc        = IndexTimesheets
	RemoveTimesheetDocsFunc    = RemoveTimesheetDocs
	SearchTimesheetReportsFunc = SearchTimesheetReports
)

type TimesheetReportDoc struct {
	timesheet.Timesheet

	DurationHours float64 `json:"durationHours"`
}

// Bootstrap binds the report index into the timesheet stop/review and
// assignment cleanup paths.
func Bootstrap() {
	timesheet.IndexTimesheetsFunc = func(timesheets []timesheet.Timesheet) {
		IndexTimesheetsFunc(timesheets)
	}
	assignment.CleanupTimesheetDocsFunc = func(timesheetIds []types.ID) {
		RemoveTimesheetDocsFunc(timesheetIds)
	}
}

// IndexTimesheets writes report documents for the given timesheets.
// Indexing failures are logged and dropped: the report index trails the
// primary store and the nightly resync repairs gaps.
func IndexTimesheets(timesheets []timesheet.Timesheet) {
	for _, ts := range timesheets {
		doc := TimesheetReportDoc{Timesheet: ts, DurationHours: float64(ts.DurationMinutes) / 60}
		if err := es.IndexFunc(context.Background(), TimesheetIndexName, ts.ID, doc); err != nil {
			logrus.Errorf("failed to index timesheet %v: %v", ts.ID, err)
		}
	}
}

// RemoveTimesheetDocs drops the report documents of deleted timesheets.
// Failures are logged and dropped like the indexing path.
func RemoveTimesheetDocs(timesheetIds []types.ID) {
	for _, id := range timesheetIds {
		if err := es.DeleteDocumentByIdFunc(context.Background(), TimesheetIndexName, id); err != nil {
			logrus.Errorf("failed to remove timesheet report doc %v: %v", id, err)
		}
	}
}

type TimesheetReportsQuery struct {
	JobID  types.ID               `form:"jobId"`
	UserID types.ID               `form:"userId"`
	Status timesheet.ReviewStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// SearchTimesheetReports queries the report index, scoped to the tenants
// the caller can see. Managers and admins only.
func SearchTimesheetReports(query TimesheetReportsQuery, s *session.Session) ([]TimesheetReportDoc, error) {
	isAdmin := s.Perms.HasRole(account.SystemAdminPermission.ID)
	if !isAdmin && !s.Perms.HasRolePrefix("manager_") {
		return nil, bizerror.ErrForbidden
	}

	filters := []es.H{}
	if !isAdmin {
		tenantIds := []string{}
		for _, id := range s.VisibleTenants() {
			tenantIds = append(tenantIds, id.String())
		}
		filters = append(filters, es.H{"terms": es.H{"tenantId": tenantIds}})
	}
	if query.JobID != 0 {
		filters = append(filters, es.H{"term": es.H{"jobId": query.JobID.String()}})
	}
	if query.UserID != 0 {
		filters = append(filters, es.H{"term": es.H{"userId": query.UserID.String()}})
	}
	if query.Status != "" {
		filters = append(filters, es.H{"term": es.H{"status": string(query.Status)}})
	}

	esQuery := es.H{"query": es.H{"bool": es.H{"filter": filters}}}
	result, err := es.SearchFunc(s.Context, TimesheetIndexName, esQuery)
	if err != nil {
		return nil, err
	}

	docs := []TimesheetReportDoc{}
	for _, hit := range result.Hits.Hits {
		doc := TimesheetReportDoc{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReportsFullSync rebuilds the report index from the primary store. The
// index is dropped first so documents of timesheets deleted since the
// last run do not linger.
func ReportsFullSync() {
	if err := es.DropIndexFunc(context.Background(), TimesheetIndexName); err != nil {
		logrus.Warnf("report full sync: drop index %s failed: %v", TimesheetIndexName, err)
	}

	page := 0
	pageSize := 500

	db := persistence.ActiveDataSourceManager.GormDB()

	for {
		timesheets := []timesheet.Timesheet{}
		if err := db.Order("id ASC").Offset(page * pageSize).Limit(pageSize).
			Find(&timesheets).Error; err != nil {
			logrus.Errorf("report full sync: page = %d, pageSize = %d, err = %v", page, pageSize, err)
			break
		}

		if len(timesheets) == 0 {
			logrus.Infof("report full sync: no more timesheets to index")
			break
		}

		IndexTimesheetsFunc(timesheets)
		page++
	}
}
