package service

import (
	"context"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDashboardService(repo repository.DashboardRepository, cache Cache, now time.Time) *dashboardService {
	svc := NewDashboardService(repo, cache, time.Minute, zap.NewNop()).(*dashboardService)
	svc.loc = time.UTC
	svc.now = func() time.Time { return now }
	return svc
}

func TestDashboardBuckets(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := &fakeDashboardRepo{
		byStatus:  []repository.GroupCount{{Key: "LEAD", Count: 3}, {Key: "PERDIDO", Count: 1}},
		byChannel: []repository.GroupCount{{Key: "INSTAGRAM", Count: 4}},
		created: []time.Time{
			time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		},
		total:     3,
		converted: 1,
		totals: &repository.ProjectTotals{
			Total: dec("10000"), Pending: dec("2500"), Count: 4, DeliveredWithPending: 1,
		},
		received: []repository.ReceivedPayment{
			{Amount: dec("1000"), ReceivedAt: time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)},
			{Amount: dec("500"), ReceivedAt: time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC)},
		},
		byStage: []repository.GroupCount{{Key: "MONTAGEM", Count: 2}},
	}

	dash, err := newDashboardService(repo, nil, now).Get(context.Background())
	require.NoError(t, err)

	labels := make([]string, 0, len(dash.CRM.ByMonth))
	for _, m := range dash.CRM.ByMonth {
		labels = append(labels, m.Month)
	}
	assert.Equal(t, []string{"1/2025", "2/2025", "3/2025", "4/2025", "5/2025", "6/2025"}, labels)
	assert.Equal(t, 1, dash.CRM.ByMonth[0].Total)
	assert.Equal(t, 2, dash.CRM.ByMonth[5].Total)
	assert.True(t, dec("1500").Equal(dash.Finance.RevenueByMonth[1].Value))

	assert.Equal(t, 3, dash.CRM.ByStatus[types.LeadNew])
	assert.Equal(t, 0, dash.CRM.ByStatus[types.LeadContractSigned])
	assert.Equal(t, 4, dash.CRM.ByChannel["INSTAGRAM"])
	assert.InDelta(t, 33.33, dash.CRM.ConversionRate, 0.0001)

	assert.True(t, dec("7500").Equal(dash.Finance.TotalBilled))
	assert.True(t, dec("2500").Equal(dash.Finance.TotalPending))
	assert.Equal(t, 1, dash.Finance.DeliveredWithPending)
	assert.Equal(t, 2, dash.Production.ByStage["MONTAGEM"])
	assert.Empty(t, dash.Alerts)
}

func TestDashboardAlerts(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -2)
	soon := now.AddDate(0, 0, 3)
	repo := &fakeDashboardRepo{
		duePayments: []repository.ProjectAlertRow{
			{ID: "p1", Name: "Cozinha", FinalPaymentDueAt: &overdue, PendingValue: dec("100")},
			{ID: "p2", Name: "Sala", FinalPaymentDueAt: &soon, PendingValue: dec("100")},
		},
		stalled:   []repository.ProjectAlertRow{{ID: "p3", Name: "Quarto", CreatedAt: now.AddDate(0, 0, -10)}},
		idleLeads: []repository.LeadAlertRow{{ID: "l1", Name: "Ana", LastActivity: now.AddDate(0, 0, -6)}},
		lowStock:  []repository.StockAlertRow{{ID: "s1", Name: "Dobradiça", MinimumQuantity: 10, CurrentQuantity: 2}},
		bills: []repository.CashAlertRow{
			{ID: "c1", Description: "Energia", Amount: dec("50"), DueAt: now.AddDate(0, 0, -1)},
			{ID: "c2", Description: "Água", Amount: dec("50"), DueAt: now.AddDate(0, 0, 2)},
		},
	}

	dash, err := newDashboardService(repo, nil, now).Get(context.Background())
	require.NoError(t, err)

	messages := map[string]string{}
	for _, a := range dash.Alerts {
		messages[a.Type] = a.Message
	}
	assert.Equal(t, "Pagamento vencido: Cozinha", messages[AlertPaymentOverdue])
	assert.Equal(t, "Pagamento previsto em breve: Sala", messages[AlertPaymentSoon])
	assert.Equal(t, "Quarto aguardando arquivos há 10 dias", messages[AlertProjectStalled])
	assert.Equal(t, "Ana sem contato há 6 dias", messages[AlertLeadIdle])
	assert.Equal(t, "Estoque: Dobradiça abaixo do mínimo (2/10)", messages[AlertLowStock])
	assert.Equal(t, "Conta vencida: Energia", messages[AlertBillOverdue])
	assert.Equal(t, "Conta a vencer: Água", messages[AlertBillDueSoon])
}

func TestDashboardCache(t *testing.T) {
	repo := &fakeDashboardRepo{total: 2}
	cache := newMemoryCache()
	svc := newDashboardService(repo, cache, time.Now())
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	second, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first.CRM.TotalLeads, second.CRM.TotalLeads)

	svc.Invalidate(ctx)
	assert.Equal(t, []string{dashboardCachePattern}, cache.invalidated)
	_, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
