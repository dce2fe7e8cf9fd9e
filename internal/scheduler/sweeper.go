package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type Expirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// Sweeper periodically expires waitlist entries whose offer window closed.
type Sweeper struct {
	sched    gocron.Scheduler
	expirer  Expirer
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(expirer Expirer, interval time.Duration, log *zap.Logger) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Sweeper{sched: sched, expirer: expirer, interval: interval, log: log}, nil
}

func (s *Sweeper) Start() error {
	j, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
		gocron.WithName("waitlist-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register waitlist sweep: %w", err)
	}
	s.sched.Start()
	s.log.Info("waitlist sweeper started", zap.String("job_id", j.ID().String()), zap.Duration("interval", s.interval))
	return nil
}

func (s *Sweeper) Shutdown() error {
	return s.sched.Shutdown()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	n, err := s.expirer.ExpireDue(ctx)
	if err != nil {
		s.log.Error("waitlist sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("expired waitlist entries", zap.Int("count", n))
	}
}
