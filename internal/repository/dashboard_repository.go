package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// GroupCount is one bucket of a GROUP BY count.
type GroupCount struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

type ProjectTotals struct {
	Total                decimal.Decimal `db:"total"`
	Pending              decimal.Decimal `db:"pending"`
	Count                int             `db:"count"`
	DeliveredWithPending int             `db:"delivered_with_pending"`
}

type ReceivedPayment struct {
	Amount     decimal.Decimal `db:"amount"`
	ReceivedAt time.Time       `db:"received_at"`
}

type ProjectAlertRow struct {
	ID                string                 `db:"id"`
	Name              string                 `db:"name"`
	ProductionStatus  types.ProductionStatus `db:"production_status"`
	FinalPaymentDueAt *time.Time             `db:"final_payment_due_at"`
	PendingValue      decimal.Decimal        `db:"pending_value"`
	LeadName          *string                `db:"lead_name"`
	CreatedAt         time.Time              `db:"created_at"`
}

type LeadAlertRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	LastActivity time.Time `db:"last_activity"`
}

type StockAlertRow struct {
	ID              string `db:"id"`
	Name            string `db:"name"`
	MinimumQuantity int    `db:"minimum_quantity"`
	CurrentQuantity int    `db:"current_quantity"`
}

type CashAlertRow struct {
	ID          string          `db:"id"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	DueAt       time.Time       `db:"due_at"`
}

type LeadExportRow struct {
	Name               string            `db:"name"`
	Email              *string           `db:"email"`
	Phone              string            `db:"phone"`
	Channel            types.LeadChannel `db:"channel"`
	Status             types.LeadStatus  `db:"status"`
	LossReason         *string           `db:"loss_reason"`
	ProjectDescription *string           `db:"project_description"`
	CreatedAt          time.Time         `db:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at"`
}

type ProjectExportRow struct {
	Name              string                 `db:"name"`
	LeadName          *string                `db:"lead_name"`
	LeadPhone         *string                `db:"lead_phone"`
	ProductionStatus  types.ProductionStatus `db:"production_status"`
	TotalValue        decimal.Decimal        `db:"total_value"`
	PaidValue         decimal.Decimal        `db:"paid_value"`
	PendingValue      decimal.Decimal        `db:"pending_value"`
	FinalPaymentDueAt *time.Time             `db:"final_payment_due_at"`
	PlannedDeliveryAt *time.Time             `db:"planned_delivery_at"`
	ActualDeliveryAt  *time.Time             `db:"actual_delivery_at"`
	CreatedAt         time.Time              `db:"created_at"`
}

// DashboardRepository serves the read-side aggregates. It runs on sqlx and
// never participates in write transactions.
type DashboardRepository interface {
	LeadCountsByStatus(ctx context.Context) ([]GroupCount, error)
	LeadCountsByChannel(ctx context.Context) ([]GroupCount, error)
	LeadCreationDates(ctx context.Context, since time.Time) ([]time.Time, error)
	CountLeads(ctx context.Context) (total int, converted int, err error)

	ProjectTotals(ctx context.Context) (*ProjectTotals, error)
	ProjectCountsByStatus(ctx context.Context) ([]GroupCount, error)
	ReceivedPaymentsSince(ctx context.Context, since time.Time) ([]ReceivedPayment, error)

	PaymentsDueBefore(ctx context.Context, until time.Time) ([]ProjectAlertRow, error)
	ProjectsStuckIn(ctx context.Context, statuses []types.ProductionStatus, createdBefore time.Time) ([]ProjectAlertRow, error)
	QuotedLeadsIdleSince(ctx context.Context, before time.Time) ([]LeadAlertRow, error)
	LowStockItems(ctx context.Context) ([]StockAlertRow, error)
	PlannedOutflowsDueBefore(ctx context.Context, until time.Time) ([]CashAlertRow, error)

	LeadExport(ctx context.Context, filter LeadFilter) ([]LeadExportRow, error)
	ProjectExport(ctx context.Context, status types.ProductionStatus) ([]ProjectExportRow, error)
}

type sqlxDashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) DashboardRepository {
	return &sqlxDashboardRepository{db: db}
}

func (r *sqlxDashboardRepository) LeadCountsByStatus(ctx context.Context) ([]GroupCount, error) {
	var out []GroupCount
	err := r.db.SelectContext(ctx, &out, `SELECT status AS key, COUNT(*) AS count FROM leads GROUP BY status`)
	return out, err
}

func (r *sqlxDashboardRepository) LeadCountsByChannel(ctx context.Context) ([]GroupCount, error) {
	var out []GroupCount
	err := r.db.SelectContext(ctx, &out, `SELECT channel AS key, COUNT(*) AS count FROM leads GROUP BY channel`)
	return out, err
}

func (r *sqlxDashboardRepository) LeadCreationDates(ctx context.Context, since time.Time) ([]time.Time, error) {
	var out []time.Time
	err := r.db.SelectContext(ctx, &out, `SELECT created_at FROM leads WHERE created_at >= $1`, since)
	return out, err
}

func (r *sqlxDashboardRepository) CountLeads(ctx context.Context) (int, int, error) {
	var row struct {
		Total     int `db:"total"`
		Converted int `db:"converted"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM projects p WHERE p.lead_id = l.id)) AS converted
		FROM leads l`)
	return row.Total, row.Converted, err
}

func (r *sqlxDashboardRepository) ProjectTotals(ctx context.Context) (*ProjectTotals, error) {
	var totals ProjectTotals
	err := r.db.GetContext(ctx, &totals, `
		SELECT COALESCE(SUM(total_value), 0) AS total,
			COALESCE(SUM(pending_value), 0) AS pending,
			COUNT(*) AS count,
			COUNT(*) FILTER (WHERE production_status = $1 AND pending_value > 0) AS delivered_with_pending
		FROM projects`, types.StatusDelivered)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *sqlxDashboardRepository) ProjectCountsByStatus(ctx context.Context) ([]GroupCount, error) {
	var out []GroupCount
	err := r.db.SelectContext(ctx, &out,
		`SELECT production_status AS key, COUNT(*) AS count FROM projects GROUP BY production_status`)
	return out, err
}

func (r *sqlxDashboardRepository) ReceivedPaymentsSince(ctx context.Context, since time.Time) ([]ReceivedPayment, error) {
	var out []ReceivedPayment
	err := r.db.SelectContext(ctx, &out,
		`SELECT amount, received_at FROM payments WHERE received_at IS NOT NULL AND received_at >= $1`, since)
	return out, err
}

const projectAlertSelect = `
	SELECT p.id, p.name, p.production_status, p.final_payment_due_at, p.pending_value, l.name AS lead_name, p.created_at
	FROM projects p
	LEFT JOIN leads l ON l.id = p.lead_id`

func (r *sqlxDashboardRepository) PaymentsDueBefore(ctx context.Context, until time.Time) ([]ProjectAlertRow, error) {
	var out []ProjectAlertRow
	err := r.db.SelectContext(ctx, &out, projectAlertSelect+`
		WHERE p.final_payment_due_at IS NOT NULL AND p.final_payment_due_at <= $1 AND p.pending_value > 0
		ORDER BY p.final_payment_due_at`, until)
	return out, err
}

func (r *sqlxDashboardRepository) ProjectsStuckIn(ctx context.Context, statuses []types.ProductionStatus, createdBefore time.Time) ([]ProjectAlertRow, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	var out []ProjectAlertRow
	err := r.db.SelectContext(ctx, &out, projectAlertSelect+`
		WHERE p.production_status = ANY($1) AND p.created_at <= $2
		ORDER BY p.created_at`, pq.Array(names), createdBefore)
	return out, err
}

func (r *sqlxDashboardRepository) QuotedLeadsIdleSince(ctx context.Context, before time.Time) ([]LeadAlertRow, error) {
	var out []LeadAlertRow
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, last_activity FROM (
			SELECT l.id, l.name,
				COALESCE(
					(SELECT MAX(a.created_at) FROM lead_activities a WHERE a.lead_id = l.id),
					l.last_contact_at,
					l.updated_at
				) AS last_activity
			FROM leads l
			WHERE l.status = $1
		) q
		WHERE last_activity <= $2
		ORDER BY last_activity`, types.LeadQuoteSent, before)
	return out, err
}

func (r *sqlxDashboardRepository) LowStockItems(ctx context.Context) ([]StockAlertRow, error) {
	var out []StockAlertRow
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, minimum_quantity, current_quantity FROM stock_alert_items
		WHERE alert_active AND current_quantity < minimum_quantity
		ORDER BY name`)
	return out, err
}

func (r *sqlxDashboardRepository) PlannedOutflowsDueBefore(ctx context.Context, until time.Time) ([]CashAlertRow, error) {
	var out []CashAlertRow
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, description, amount, due_at FROM cash_entries
		WHERE type = $1 AND status = $2 AND due_at IS NOT NULL AND due_at <= $3
		ORDER BY due_at`, types.LedgerOutflow, types.LedgerPlanned, until)
	return out, err
}

func (r *sqlxDashboardRepository) LeadExport(ctx context.Context, filter LeadFilter) ([]LeadExportRow, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Channel != "" {
		conds = append(conds, "channel = "+arg(filter.Channel))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR phone LIKE %s)", p, p))
	}
	query := `SELECT name, email, phone, channel, status, loss_reason, project_description, created_at, updated_at FROM leads`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	var out []LeadExportRow
	err := r.db.SelectContext(ctx, &out, query, args...)
	return out, err
}

// ProjectExport lists projects newest first, optionally for one stage.
func (r *sqlxDashboardRepository) ProjectExport(ctx context.Context, status types.ProductionStatus) ([]ProjectExportRow, error) {
	query := `
		SELECT p.name, l.name AS lead_name, l.phone AS lead_phone, p.production_status,
			p.total_value, p.paid_value, p.pending_value,
			p.final_payment_due_at, p.planned_delivery_at, p.actual_delivery_at, p.created_at
		FROM projects p
		LEFT JOIN leads l ON l.id = p.lead_id`
	var args []any
	if status != "" {
		query += " WHERE p.production_status = $1"
		args = append(args, status)
	}
	query += " ORDER BY p.created_at DESC"

	var out []ProjectExportRow
	err := r.db.SelectContext(ctx, &out, query, args...)
	return out, err
}
