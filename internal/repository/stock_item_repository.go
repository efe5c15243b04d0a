package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type StockItem struct {
	ID              string    `json:"id"`
	Name            string    `json:"nome"`
	MinimumQuantity int       `json:"quantidadeMinima"`
	CurrentQuantity int       `json:"quantidadeAtual"`
	AlertActive     bool      `json:"avisoAtivo"`
	CreatedBy       *string   `json:"createdById"`
	UpdatedBy       *string   `json:"updatedById"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// BelowMinimum reports whether an active reminder has fallen under its threshold.
func (s *StockItem) BelowMinimum() bool {
	return s.AlertActive && s.CurrentQuantity < s.MinimumQuantity
}

type StockItemRepository interface {
	Create(ctx context.Context, item *StockItem) error
	FindByID(ctx context.Context, id string) (*StockItem, error)
	List(ctx context.Context) ([]*StockItem, error)
	Update(ctx context.Context, item *StockItem) error
	Delete(ctx context.Context, id string) error
}

type pgStockItemRepository struct {
	db DBTX
}

const stockColumns = `id, name, minimum_quantity, current_quantity, alert_active, created_by, updated_by, created_at, updated_at`

func scanStockItem(row interface{ Scan(...any) error }) (*StockItem, error) {
	s := &StockItem{}
	err := row.Scan(&s.ID, &s.Name, &s.MinimumQuantity, &s.CurrentQuantity, &s.AlertActive,
		&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgStockItemRepository) Create(ctx context.Context, item *StockItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := `
		INSERT INTO stock_alert_items (id, name, minimum_quantity, current_quantity, alert_active, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		item.ID, item.Name, item.MinimumQuantity, item.CurrentQuantity, item.AlertActive, item.CreatedBy,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *pgStockItemRepository) FindByID(ctx context.Context, id string) (*StockItem, error) {
	s, err := scanStockItem(r.db.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock_alert_items WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	return s, err
}

func (r *pgStockItemRepository) List(ctx context.Context) ([]*StockItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+stockColumns+` FROM stock_alert_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*StockItem
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *pgStockItemRepository) Update(ctx context.Context, item *StockItem) error {
	query := `
		UPDATE stock_alert_items SET
			name = $2, minimum_quantity = $3, current_quantity = $4, alert_active = $5, updated_by = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		item.ID, item.Name, item.MinimumQuantity, item.CurrentQuantity, item.AlertActive, item.UpdatedBy,
	).Scan(&item.UpdatedAt)
}

func (r *pgStockItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM stock_alert_items WHERE id = $1`, id)
	return err
}
