package reports

import (
	"sync"
	"timewheel/account"
	"timewheel/bizerror"
	"timewheel/session"

	cron "github.com/robfig/cron/v3"
)

var (
	lock    sync.Mutex
	running bool

	ReportsFullSyncFunc    = ReportsFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

func StartCron() {
	crontab := cron.New(cron.WithSeconds())
	crontab.AddFunc("0 0 23 * * ?", ReportsFullSync)
	crontab.Start()
}

// ScheduleNewSyncRun starts a full resync in the background, admins only.
// Returns false without error when a run is already in flight.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		ReportsFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}
