package service

import (
	"context"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/notification"
	"github.com/camarpe/camarpe-backend/internal/notification/mocks"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newDailyAlertService(repo repository.DashboardRepository, n notification.Notifier, m Mailer, now time.Time) *dailyAlertService {
	cfg := &config.Config{AlertEmails: []string{"gestao@camarpe.com.br"}, FrontendURL: "https://app.camarpe.com.br/"}
	svc := NewDailyAlertService(repo, n, m, cfg, zap.NewNop()).(*dailyAlertService)
	svc.loc = time.UTC
	svc.now = func() time.Time { return now }
	return svc
}

func TestDailyAlertsSummary(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -1)
	repo := &fakeDashboardRepo{
		duePayments: []repository.ProjectAlertRow{
			{ID: "p1", Name: "Cozinha", FinalPaymentDueAt: &overdue, PendingValue: dec("1234.5")},
		},
		bills: []repository.CashAlertRow{
			{ID: "c1", Description: "Energia", Amount: dec("80"), DueAt: now.AddDate(0, 0, -3)},
			{ID: "c2", Description: "Água", Amount: dec("40"), DueAt: now.AddDate(0, 0, 2)},
			{ID: "c3", Description: "Aluguel", Amount: dec("900"), DueAt: now.AddDate(0, 0, 3)},
			{ID: "c4", Description: "Seguro", Amount: dec("900"), DueAt: now.AddDate(0, 0, 10)},
		},
	}

	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	want := "1 pagamento(s) vencido(s) de projeto; 1 conta(s) vencida(s); 1 conta(s) a vencer em até 3 dias"
	notifier.EXPECT().
		NotifyRoles(gomock.Any(), types.ManagementRoles, notification.DailyDigest(want)).
		Return(nil)
	mailer := &recordingMailer{configured: true}

	res, err := newDailyAlertService(repo, notifier, mailer, now).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, want, res.Sent)

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, []string{"gestao@camarpe.com.br"}, mailer.to)
	assert.Equal(t, "https://app.camarpe.com.br/dashboard", sent.DashboardURL)
	require.Len(t, sent.OverduePayments, 1)
	assert.Equal(t, "R$ 1.234,50", sent.OverduePayments[0].Value)
	assert.Len(t, sent.UpcomingBills, 1)
}

func TestDailyAlertsNothingToReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	mailer := &recordingMailer{configured: true}

	res, err := newDailyAlertService(&fakeDashboardRepo{}, notifier, mailer, time.Now()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &DailyAlertResult{OK: true, Message: "Nenhum aviso"}, res)
	assert.Empty(t, mailer.sent)
}

func TestDailyAlertsSkipEmailWhenNotConfigured(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	repo := &fakeDashboardRepo{bills: []repository.CashAlertRow{
		{ID: "c1", Description: "Energia", Amount: dec("80"), DueAt: now.AddDate(0, 0, -3)},
	}}
	mailer := &recordingMailer{}

	res, err := newDailyAlertService(repo, nil, mailer, now).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1 conta(s) vencida(s)", res.Sent)
	assert.Empty(t, mailer.sent)
}
