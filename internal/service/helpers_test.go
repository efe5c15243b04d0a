package service

import (
	"context"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/email"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/repository/repotest"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	admin      = Actor{UserID: "u-admin", Role: types.RoleAdmin}
	sales      = Actor{UserID: "u-sales", Role: types.RoleComercial}
	production = Actor{UserID: "u-prod", Role: types.RoleProducao}
	manager    = Actor{UserID: "u-gestao", Role: types.RoleGestao}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func ptr[T any](v T) *T { return &v }

func seedLead(t *testing.T, store *repotest.Store, name string) *repository.Lead {
	t.Helper()
	lead := &repository.Lead{
		Name:    name,
		NameKey: name,
		Phone:   "38999990000",
		Channel: types.ChannelReferral,
		Status:  types.LeadNew,
	}
	require.NoError(t, store.Leads().Create(context.Background(), lead))
	return lead
}

func seedProject(t *testing.T, store *repotest.Store, name, total, paid string) *repository.Project {
	t.Helper()
	project := &repository.Project{
		Name:             name,
		TotalValue:       dec(total),
		PaidValue:        dec(paid),
		PendingValue:     dec(total).Sub(dec(paid)),
		ProductionStatus: types.StatusAwaitingFiles,
	}
	require.NoError(t, store.Projects().Create(context.Background(), project))
	return project
}

// fakeDashboardRepo serves canned aggregates.
type fakeDashboardRepo struct {
	byStatus, byChannel, byStage []repository.GroupCount
	created                      []time.Time
	total, converted             int
	totals                       *repository.ProjectTotals
	received                     []repository.ReceivedPayment
	duePayments, stalled         []repository.ProjectAlertRow
	idleLeads                    []repository.LeadAlertRow
	lowStock                     []repository.StockAlertRow
	bills                        []repository.CashAlertRow
	export                       []repository.LeadExportRow
	projectExport                []repository.ProjectExportRow
	err                          error

	calls int
}

var _ repository.DashboardRepository = (*fakeDashboardRepo)(nil)

func (f *fakeDashboardRepo) LeadCountsByStatus(context.Context) ([]repository.GroupCount, error) {
	f.calls++
	return f.byStatus, f.err
}

func (f *fakeDashboardRepo) LeadCountsByChannel(context.Context) ([]repository.GroupCount, error) {
	return f.byChannel, nil
}

func (f *fakeDashboardRepo) LeadCreationDates(context.Context, time.Time) ([]time.Time, error) {
	return f.created, nil
}

func (f *fakeDashboardRepo) CountLeads(context.Context) (int, int, error) {
	return f.total, f.converted, nil
}

func (f *fakeDashboardRepo) ProjectTotals(context.Context) (*repository.ProjectTotals, error) {
	if f.totals == nil {
		return &repository.ProjectTotals{}, nil
	}
	return f.totals, nil
}

func (f *fakeDashboardRepo) ProjectCountsByStatus(context.Context) ([]repository.GroupCount, error) {
	return f.byStage, nil
}

func (f *fakeDashboardRepo) ReceivedPaymentsSince(context.Context, time.Time) ([]repository.ReceivedPayment, error) {
	return f.received, nil
}

func (f *fakeDashboardRepo) PaymentsDueBefore(_ context.Context, until time.Time) ([]repository.ProjectAlertRow, error) {
	var out []repository.ProjectAlertRow
	for _, p := range f.duePayments {
		if p.FinalPaymentDueAt != nil && !p.FinalPaymentDueAt.After(until) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDashboardRepo) ProjectsStuckIn(context.Context, []types.ProductionStatus, time.Time) ([]repository.ProjectAlertRow, error) {
	return f.stalled, nil
}

func (f *fakeDashboardRepo) QuotedLeadsIdleSince(context.Context, time.Time) ([]repository.LeadAlertRow, error) {
	return f.idleLeads, nil
}

func (f *fakeDashboardRepo) LowStockItems(context.Context) ([]repository.StockAlertRow, error) {
	return f.lowStock, nil
}

func (f *fakeDashboardRepo) PlannedOutflowsDueBefore(_ context.Context, until time.Time) ([]repository.CashAlertRow, error) {
	var out []repository.CashAlertRow
	for _, b := range f.bills {
		if !b.DueAt.After(until) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeDashboardRepo) ProjectExport(_ context.Context, status types.ProductionStatus) ([]repository.ProjectExportRow, error) {
	var out []repository.ProjectExportRow
	for _, r := range f.projectExport {
		if status == "" || r.ProductionStatus == status {
			out = append(out, r)
		}
	}
	return out, f.err
}

func (f *fakeDashboardRepo) LeadExport(context.Context, repository.LeadFilter) ([]repository.LeadExportRow, error) {
	return f.export, f.err
}

// memoryCache stores values as-is, keyed without expiry.
type memoryCache struct {
	values      map[string]*Dashboard
	invalidated []string
}

func newMemoryCache() *memoryCache { return &memoryCache{values: map[string]*Dashboard{}} }

func (c *memoryCache) GetCache(_ context.Context, key string, dest interface{}) error {
	v, ok := c.values[key]
	if !ok {
		return redis.Nil
	}
	*dest.(*Dashboard) = *v
	return nil
}

func (c *memoryCache) SetCache(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.values[key] = value.(*Dashboard)
	return nil
}

func (c *memoryCache) InvalidateCache(_ context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	c.values = map[string]*Dashboard{}
	return nil
}

type recordingMailer struct {
	configured bool
	to         []string
	sent       []email.DailyAlertsData
	resetTo    []string
	resets     []email.PasswordResetData
}

func (m *recordingMailer) Configured() bool { return m.configured }

func (m *recordingMailer) SendDailyAlerts(to []string, data email.DailyAlertsData) error {
	m.to = to
	m.sent = append(m.sent, data)
	return nil
}

func (m *recordingMailer) SendPasswordReset(to string, data email.PasswordResetData) error {
	m.resetTo = append(m.resetTo, to)
	m.resets = append(m.resets, data)
	return nil
}
