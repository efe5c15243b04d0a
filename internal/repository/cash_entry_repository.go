package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashEntry is one row of the operating cash ledger.
type CashEntry struct {
	ID              string                 `json:"id"`
	Type            types.LedgerType       `json:"tipo"`
	Amount          decimal.Decimal        `json:"valor"`
	Date            time.Time              `json:"data"`
	DueAt           *time.Time             `json:"dataVencimento"`
	PaidAt          *time.Time             `json:"dataPagamento"`
	Category        *types.ExpenseCategory `json:"categoria"`
	Description     string                 `json:"descricao"`
	SalaryReference *string                `json:"referenciaSalario"`
	Status          types.LedgerStatus     `json:"status"`
	ProjectID       *string                `json:"projetoId"`
	ProjectName     *string                `json:"projetoNome,omitempty"`
	CreatedBy       *string                `json:"createdById"`
	UpdatedBy       *string                `json:"updatedById"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

type CashFilter struct {
	From      *time.Time
	To        *time.Time
	Type      types.LedgerType
	Status    types.LedgerStatus
	ProjectID string
	// PayablesOnly keeps planned outflows that carry a due date.
	PayablesOnly bool
}

type CashEntryRepository interface {
	Create(ctx context.Context, entry *CashEntry) error
	FindByID(ctx context.Context, id string) (*CashEntry, error)
	List(ctx context.Context, filter CashFilter) ([]*CashEntry, error)
	Update(ctx context.Context, entry *CashEntry) error
	Delete(ctx context.Context, id string) error
}

type pgCashEntryRepository struct {
	db DBTX
}

const cashSelect = `
	SELECT c.id, c.type, c.amount, c.entry_date, c.due_at, c.paid_at, c.category, c.description,
		c.salary_reference, c.status, c.project_id, p.name, c.created_by, c.updated_by, c.created_at, c.updated_at
	FROM cash_entries c
	LEFT JOIN projects p ON p.id = c.project_id`

func scanCashEntry(row interface{ Scan(...any) error }) (*CashEntry, error) {
	e := &CashEntry{}
	err := row.Scan(&e.ID, &e.Type, &e.Amount, &e.Date, &e.DueAt, &e.PaidAt, &e.Category, &e.Description,
		&e.SalaryReference, &e.Status, &e.ProjectID, &e.ProjectName, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *pgCashEntryRepository) Create(ctx context.Context, entry *CashEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `
		INSERT INTO cash_entries (
			id, type, amount, entry_date, due_at, paid_at, category, description,
			salary_reference, status, project_id, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		entry.ID, entry.Type, entry.Amount, entry.Date, entry.DueAt, entry.PaidAt, entry.Category,
		entry.Description, entry.SalaryReference, entry.Status, entry.ProjectID, entry.CreatedBy,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
}

func (r *pgCashEntryRepository) FindByID(ctx context.Context, id string) (*CashEntry, error) {
	e, err := scanCashEntry(r.db.QueryRow(ctx, cashSelect+` WHERE c.id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	return e, err
}

func (r *pgCashEntryRepository) List(ctx context.Context, filter CashFilter) ([]*CashEntry, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.From != nil {
		conds = append(conds, "c.entry_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "c.entry_date < "+arg(*filter.To))
	}
	if filter.Type != "" {
		conds = append(conds, "c.type = "+arg(filter.Type))
	}
	if filter.Status != "" {
		conds = append(conds, "c.status = "+arg(filter.Status))
	}
	if filter.ProjectID != "" {
		conds = append(conds, "c.project_id = "+arg(filter.ProjectID))
	}
	if filter.PayablesOnly {
		conds = append(conds, fmt.Sprintf("c.type = %s AND c.status = %s AND c.due_at IS NOT NULL",
			arg(types.LedgerOutflow), arg(types.LedgerPlanned)))
	}

	query := cashSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.PayablesOnly {
		query += " ORDER BY c.due_at ASC"
	} else {
		query += " ORDER BY c.entry_date DESC, c.created_at DESC"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*CashEntry
	for rows.Next() {
		e, err := scanCashEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *pgCashEntryRepository) Update(ctx context.Context, entry *CashEntry) error {
	query := `
		UPDATE cash_entries SET
			amount = $2, entry_date = $3, due_at = $4, paid_at = $5, category = $6, description = $7,
			salary_reference = $8, status = $9, project_id = $10, updated_by = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		entry.ID, entry.Amount, entry.Date, entry.DueAt, entry.PaidAt, entry.Category, entry.Description,
		entry.SalaryReference, entry.Status, entry.ProjectID, entry.UpdatedBy,
	).Scan(&entry.UpdatedAt)
}

func (r *pgCashEntryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cash_entries WHERE id = $1`, id)
	return err
}
