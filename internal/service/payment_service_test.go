package service

import (
	"context"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/repository/repotest"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceivedPaymentMovesPendingToPaid(t *testing.T) {
	store := repotest.New()
	project := seedProject(t, store, "Cozinha", "10000", "0")
	svc := NewPaymentService(store)

	_, err := svc.Create(context.Background(), sales, project.ID, CreatePaymentInput{
		Amount:     dec("3000"),
		Type:       types.PaymentEntry,
		ReceivedAt: ptr("2025-02-10"),
	})
	require.NoError(t, err)

	got := store.AllProjects()[0]
	assert.True(t, dec("3000").Equal(got.PaidValue))
	assert.True(t, dec("7000").Equal(got.PendingValue))
	assert.True(t, got.TotalValue.Equal(got.PaidValue.Add(got.PendingValue)))
}

func TestPaymentExceedingPendingIsRejected(t *testing.T) {
	store := repotest.New()
	project := seedProject(t, store, "Cozinha", "1000", "800")
	svc := NewPaymentService(store)

	_, err := svc.Create(context.Background(), sales, project.ID, CreatePaymentInput{
		Amount:     dec("500"),
		Type:       types.PaymentFinal,
		ReceivedAt: ptr("2025-02-10"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Valor do pagamento excede o valor pendente", verr.Message)

	assert.Empty(t, store.AllPayments())
	got := store.AllProjects()[0]
	assert.True(t, dec("800").Equal(got.PaidValue))
	assert.True(t, dec("200").Equal(got.PendingValue))
}

func TestReceivableLeavesBalances(t *testing.T) {
	store := repotest.New()
	project := seedProject(t, store, "Cozinha", "1000", "0")
	svc := NewPaymentService(store)

	payment, err := svc.Create(context.Background(), sales, project.ID, CreatePaymentInput{
		Amount: dec("5000"),
		Type:   types.PaymentFinal,
		DueAt:  ptr("2025-05-01"),
	})
	require.NoError(t, err)
	assert.Nil(t, payment.ReceivedAt)

	got := store.AllProjects()[0]
	assert.True(t, got.PaidValue.IsZero())
	assert.True(t, dec("1000").Equal(got.PendingValue))
}

func TestFinalPaymentClearsDueDate(t *testing.T) {
	store := repotest.New()
	project := seedProject(t, store, "Cozinha", "1000", "0")
	due := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Projects().UpdateBalances(context.Background(), project.ID, project.PaidValue, project.PendingValue, &due))
	svc := NewPaymentService(store)

	_, err := svc.Create(context.Background(), sales, project.ID, CreatePaymentInput{
		Amount: dec("400"), Type: types.PaymentEntry, ReceivedAt: ptr("2025-05-01"),
	})
	require.NoError(t, err)
	require.NotNil(t, store.AllProjects()[0].FinalPaymentDueAt)

	_, err = svc.Create(context.Background(), sales, project.ID, CreatePaymentInput{
		Amount: dec("600"), Type: types.PaymentFinal, ReceivedAt: ptr("2025-06-01"),
	})
	require.NoError(t, err)
	got := store.AllProjects()[0]
	assert.Nil(t, got.FinalPaymentDueAt)
	assert.True(t, got.PendingValue.IsZero())

	payments, err := svc.ListByProject(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestPaymentValidation(t *testing.T) {
	store := repotest.New()
	project := seedProject(t, store, "Cozinha", "1000", "0")
	svc := NewPaymentService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, sales, project.ID, CreatePaymentInput{Amount: dec("0"), Type: types.PaymentEntry})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, sales, project.ID, CreatePaymentInput{Amount: dec("1"), Type: "PARCELA"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, sales, "missing", CreatePaymentInput{Amount: dec("1"), Type: types.PaymentEntry})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, production, project.ID, CreatePaymentInput{Amount: dec("1"), Type: types.PaymentEntry})
	assert.ErrorIs(t, err, ErrForbidden)
}
