package cron

import (
	"context"
	"time"

	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DailyAlertsSpec runs the digest every morning.
const DailyAlertsSpec = "0 8 * * *"

const jobTimeout = 2 * time.Minute

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron        *cron.Cron
	dailyAlerts service.DailyAlertService
	log         *zap.Logger
}

// NewScheduler creates a new scheduler running in loc.
func NewScheduler(dailyAlerts service.DailyAlertService, loc *time.Location, log *zap.Logger) *Scheduler {
	log = log.With(zap.String("component", "cron"))
	logger := zapLogger{log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		dailyAlerts: dailyAlerts,
		log:         log,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(DailyAlertsSpec, s.runDailyAlerts); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runDailyAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.dailyAlerts.Run(ctx)
	if err != nil {
		s.log.Error("daily alerts failed", zap.Error(err))
		return
	}
	s.log.Info("daily alerts finished", zap.String("message", result.Message), zap.String("sent", result.Sent))
}

// zapLogger adapts zap to cron.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l zapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
