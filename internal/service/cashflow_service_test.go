package service

import (
	"context"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/repository/repotest"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCashFlowService(store repository.Store, now time.Time) *cashFlowService {
	svc := NewCashFlowService(store).(*cashFlowService)
	svc.loc = time.UTC
	svc.now = func() time.Time { return now }
	return svc
}

func TestOutflowDueTodayIsPaid(t *testing.T) {
	now := time.Date(2025, 4, 15, 9, 30, 0, 0, time.UTC)
	svc := newCashFlowService(repotest.New(), now)
	ctx := context.Background()

	category := types.CategoryFixedBills
	entry, err := svc.Create(ctx, manager, CreateCashEntryInput{
		Type:        types.LedgerOutflow,
		Amount:      dec("250"),
		Date:        "2025-04-15",
		Description: "Energia",
		Category:    &category,
	})
	require.NoError(t, err)
	assert.Equal(t, types.LedgerPaid, entry.Status)
	require.NotNil(t, entry.PaidAt)
	assert.Equal(t, now, *entry.PaidAt)
	assert.Equal(t, types.CategoryFixedBills, *entry.Category)

	later, err := svc.Create(ctx, manager, CreateCashEntryInput{
		Type:        types.LedgerOutflow,
		Amount:      dec("90"),
		Date:        "2025-04-01",
		DueAt:       ptr("2025-04-20"),
		Description: "Internet",
	})
	require.NoError(t, err)
	assert.Equal(t, types.LedgerPlanned, later.Status)
	assert.Nil(t, later.PaidAt)
}

func TestInflowDropsCategory(t *testing.T) {
	svc := newCashFlowService(repotest.New(), time.Now())
	category := types.CategoryTaxes

	entry, err := svc.Create(context.Background(), manager, CreateCashEntryInput{
		Type:        types.LedgerInflow,
		Amount:      dec("100"),
		Date:        "2025-01-02",
		Description: "Aporte",
		Category:    &category,
	})
	require.NoError(t, err)
	assert.Nil(t, entry.Category)
	assert.Equal(t, time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC), entry.Date)
}

func TestCashEntryStatusUpdate(t *testing.T) {
	now := time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)
	svc := newCashFlowService(repotest.New(), now)
	ctx := context.Background()

	entry, err := svc.Create(ctx, manager, CreateCashEntryInput{
		Type: types.LedgerOutflow, Amount: dec("10"), Date: "2025-04-30", Description: "Aluguel",
	})
	require.NoError(t, err)

	paid := types.LedgerPaid
	entry, err = svc.Update(ctx, manager, entry.ID, UpdateCashEntryInput{Status: &paid})
	require.NoError(t, err)
	require.NotNil(t, entry.PaidAt)

	planned := types.LedgerPlanned
	entry, err = svc.Update(ctx, manager, entry.ID, UpdateCashEntryInput{Status: &planned})
	require.NoError(t, err)
	assert.Nil(t, entry.PaidAt)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	_, err = svc.Get(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMonthlyReport(t *testing.T) {
	store := repotest.New()
	now := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	svc := newCashFlowService(store, now)
	ctx := context.Background()

	add := func(typ types.LedgerType, status types.LedgerStatus, amount, date string) {
		t.Helper()
		_, err := svc.Create(ctx, manager, CreateCashEntryInput{
			Type: typ, Status: status, Amount: dec(amount), Date: date, Description: "x",
		})
		require.NoError(t, err)
	}
	add(types.LedgerInflow, types.LedgerPlanned, "1000", "2025-03-10")
	add(types.LedgerInflow, types.LedgerPaid, "500", "2025-03-11")
	add(types.LedgerOutflow, types.LedgerPlanned, "300", "2025-03-12")
	add(types.LedgerOutflow, types.LedgerPaid, "200", "2025-03-13")
	add(types.LedgerOutflow, types.LedgerPaid, "999", "2025-04-01")

	project := seedProject(t, store, "Cozinha", "5000", "0")
	received := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Payments().Create(ctx, &repository.Payment{
		ProjectID: project.ID, Amount: dec("700"), Type: types.PaymentEntry, ReceivedAt: &received,
	}))

	r, err := svc.Report(ctx, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, "2025-03", r.Month)
	assert.True(t, dec("1000").Equal(r.PlannedInflows))
	assert.True(t, dec("500").Equal(r.PaidInflows))
	assert.True(t, dec("700").Equal(r.ProjectInflows))
	assert.True(t, dec("300").Equal(r.PlannedOutflows))
	assert.True(t, dec("200").Equal(r.PaidOutflows))
	assert.True(t, dec("1200").Equal(r.ProjectedBalance))
	assert.True(t, dec("1000").Equal(r.RealizedBalance))
	require.Len(t, r.Entries, 4)
	assert.True(t, r.Entries[0].Date.Before(r.Entries[3].Date))

	_, err = svc.Report(ctx, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Parâmetro mes (YYYY-MM) obrigatório", verr.Message)
}

func TestCashListProjectFilterIgnoresMonth(t *testing.T) {
	store := repotest.New()
	svc := newCashFlowService(store, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	project := seedProject(t, store, "Cozinha", "100", "0")
	ctx := context.Background()

	for _, date := range []string{"2025-02-01", "2025-03-01"} {
		_, err := svc.Create(ctx, manager, CreateCashEntryInput{
			Type: types.LedgerOutflow, Amount: dec("10"), Date: date, Description: "MDF", ProjectID: &project.ID,
		})
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx, CashListFilter{Month: "2025-02", ProjectID: project.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Date.After(entries[1].Date))

	entries, err = svc.List(ctx, CashListFilter{Month: "2025-02"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = svc.Create(ctx, manager, CreateCashEntryInput{
		Type: types.LedgerOutflow, Amount: dec("10"), Date: "2025-02-01", Description: "MDF", ProjectID: ptr("missing"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
