package repository

import (
	"context"
	"time"

	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a customer receivable or receipt against a project.
type Payment struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"projetoId"`
	Amount      decimal.Decimal   `json:"valor"`
	Type        types.PaymentType `json:"tipo"`
	ReceivedAt  *time.Time        `json:"data"`
	DueAt       *time.Time        `json:"dataVencimento"`
	Note        *string           `json:"observacao"`
	ReceiptLink *string           `json:"linkComprovante"`
	CreatedBy   *string           `json:"createdById"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	ListByProject(ctx context.Context, projectID string) ([]*Payment, error)
	// SumReceivedBetween totals payments received in [from, to).
	SumReceivedBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type pgPaymentRepository struct {
	db DBTX
}

func (r *pgPaymentRepository) Create(ctx context.Context, payment *Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	query := `
		INSERT INTO payments (id, project_id, amount, type, received_at, due_at, note, receipt_link, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		payment.ID, payment.ProjectID, payment.Amount, payment.Type, payment.ReceivedAt, payment.DueAt,
		payment.Note, payment.ReceiptLink, payment.CreatedBy,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

func (r *pgPaymentRepository) ListByProject(ctx context.Context, projectID string) ([]*Payment, error) {
	query := `
		SELECT id, project_id, amount, type, received_at, due_at, note, receipt_link, created_by, created_at, updated_at
		FROM payments
		WHERE project_id = $1
		ORDER BY COALESCE(received_at, due_at, created_at) DESC`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p := &Payment{}
		err := rows.Scan(&p.ID, &p.ProjectID, &p.Amount, &p.Type, &p.ReceivedAt, &p.DueAt,
			&p.Note, &p.ReceiptLink, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *pgPaymentRepository) SumReceivedBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE received_at >= $1 AND received_at < $2`, from, to,
	).Scan(&total)
	return total, err
}
