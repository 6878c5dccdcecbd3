// internal/notify/scheduler.go
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"jobboard-agent/internal/common/logger"
)

// DefaultSchedule is every day at 09:00.
const DefaultSchedule = "0 9 * * *"

// Digester is satisfied by *Notifier.
type Digester interface {
	SendDigest(ctx context.Context, now time.Time) (DigestResult, error)
}

// Scheduler runs the digest on a standard 5-field cron expression
// (minute hour day-of-month month day-of-week).
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	spec     string
	digester Digester
	location *time.Location
	timeout  time.Duration
	logger   logger.Logger
}

func NewScheduler(spec string, loc *time.Location, d Digester, log logger.Logger) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSchedule
	}
	if loc == nil {
		loc = time.Local
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid notification schedule %q: %w", spec, err)
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
		schedule: schedule,
		spec:     spec,
		digester: d,
		location: loc,
		timeout:  time.Minute,
		logger:   log.WithFields(map[string]interface{}{"component": "scheduler", "schedule": spec}),
	}
	s.cron.Schedule(schedule, cron.FuncJob(s.Run))
	return s, nil
}

// Next is the first run strictly after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.location))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("digest scheduler started", map[string]interface{}{
		"next": s.Next(time.Now()).Format(time.RFC3339),
	})
}

// Stop waits for a running digest to finish or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("digest still running at shutdown", nil)
	}
}

// Run sends one digest now. Failures are logged.
func (s *Scheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.digester.SendDigest(ctx, time.Now().In(s.location))
	if err != nil {
		s.logger.WithError(err).Error("digest failed", map[string]interface{}{"due": result.Due()})
		return
	}
	s.logger.Info("digest complete", map[string]interface{}{
		"due":  result.Due(),
		"next": s.Next(time.Now()).Format(time.RFC3339),
	})
}
