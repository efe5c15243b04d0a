package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type stubAlerts struct {
	calls int
	err   error
}

func (s *stubAlerts) Run(ctx context.Context) (*service.DailyAlertResult, error) {
	s.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("missing deadline")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &service.DailyAlertResult{OK: true, Message: "Nenhum aviso"}, nil
}

func TestSchedulerRegistersDailyJob(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler(&stubAlerts{}, time.UTC, zap.NewNop())
	require.NoError(t, s.Start())

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	next := entries[0].Schedule.Next(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC), next)

	s.Stop()
}

func TestRunDailyAlertsSwallowsErrors(t *testing.T) {
	alerts := &stubAlerts{err: errors.New("db down")}
	s := NewScheduler(alerts, time.UTC, zap.NewNop())

	assert.NotPanics(t, s.runDailyAlerts)
	assert.Equal(t, 1, alerts.calls)
}
