package service

import (
	"context"
	"fmt"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Payment Service
// ============================================

type CreatePaymentInput struct {
	Amount      decimal.Decimal   `json:"valor"`
	Type        types.PaymentType `json:"tipo"`
	ReceivedAt  *string           `json:"data"`
	DueAt       *string           `json:"dataVencimento"`
	Note        *string           `json:"observacao"`
	ReceiptLink *string           `json:"linkComprovante"`
}

type PaymentService interface {
	Create(ctx context.Context, actor Actor, projectID string, input CreatePaymentInput) (*repository.Payment, error)
	ListByProject(ctx context.Context, projectID string) ([]*repository.Payment, error)
}

type paymentService struct {
	store repository.Store
}

func NewPaymentService(store repository.Store) PaymentService {
	return &paymentService{store: store}
}

// Create records a payment. A received payment moves its amount from pending
// to paid under a row lock; one without a received date is a receivable and
// leaves the balances alone.
func (s *paymentService) Create(ctx context.Context, actor Actor, projectID string, input CreatePaymentInput) (*repository.Payment, error) {
	if err := authorize(actor, types.SalesRoles...); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, invalid("Valor deve ser maior que zero")
	}
	if !input.Type.IsValid() {
		return nil, invalid("Tipo de pagamento inválido")
	}

	payment := &repository.Payment{
		ProjectID: projectID,
		Amount:    input.Amount,
		Type:      input.Type,
		Note:      trimmed(input.Note),
		CreatedBy: actor.ref(),
	}
	var err error
	if payment.ReceivedAt, err = parseOptionalDay(input.ReceivedAt); err != nil {
		return nil, err
	}
	if payment.DueAt, err = parseOptionalDay(input.DueAt); err != nil {
		return nil, err
	}
	if payment.ReceiptLink, err = optionalURL(input.ReceiptLink, "Link do comprovante"); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		project, err := findProject(ctx, tx, projectID, true)
		if err != nil {
			return err
		}

		if payment.ReceivedAt != nil {
			pending := project.PendingValue.Sub(payment.Amount)
			if pending.IsNegative() {
				return invalid("Valor do pagamento excede o valor pendente")
			}
			paid := project.PaidValue.Add(payment.Amount)
			dueAt := project.FinalPaymentDueAt
			if payment.Type == types.PaymentFinal {
				dueAt = nil
			}
			if err := tx.Projects().UpdateBalances(ctx, project.ID, paid, pending, dueAt); err != nil {
				return fmt.Errorf("failed to update balances: %w", err)
			}
		}

		if err := tx.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) ListByProject(ctx context.Context, projectID string) ([]*repository.Payment, error) {
	if _, err := findProject(ctx, s.store, projectID, false); err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []*repository.Payment{}
	}
	return payments, nil
}
