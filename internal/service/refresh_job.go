package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/models"
)

const defaultRefreshCheckInterval = 15 * time.Second

// sessionRefresher is the part of SessionManager the refresh job needs.
type sessionRefresher interface {
	Session() (models.Session, bool)
	Refresh(ctx context.Context) (models.Session, error)
}

// RefreshJob refreshes the session ahead of expiry so that requests rarely
// hit a 401. It is idle until Start is called.
type RefreshJob struct {
	sessions sessionRefresher
	leeway   time.Duration
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewRefreshJob creates a RefreshJob that checks the session every interval
// and refreshes it once it expires within leeway. A non-positive interval
// defaults to 15 seconds.
func NewRefreshJob(sessions sessionRefresher, leeway, interval time.Duration, log *logger.Logger) *RefreshJob {
	if interval <= 0 {
		interval = defaultRefreshCheckInterval
	}
	return &RefreshJob{
		sessions: sessions,
		leeway:   leeway,
		interval: interval,
		now:      time.Now,
		logger:   log.WithComponent("refresh-job"),
	}
}

// Start stops any previously running loop, then launches a goroutine that
// runs a check on every tick. The goroutine exits when ctx is cancelled or
// Stop is called.
func (j *RefreshJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.check(jobCtx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. Safe to call when the job
// is not running.
func (j *RefreshJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *RefreshJob) check(ctx context.Context) {
	session, ok := j.sessions.Session()
	if !ok || !session.ExpiresWithin(j.now(), j.leeway) {
		return
	}

	if _, err := j.sessions.Refresh(ctx); err != nil {
		j.logger.Warn().Err(err).Msg("proactive refresh failed")
	}
}
