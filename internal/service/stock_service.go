package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/camarpe/camarpe-backend/internal/repository"
)

// ============================================
// Stock Service
// ============================================

type CreateStockItemInput struct {
	Name            string `json:"nome"`
	MinimumQuantity int    `json:"quantidadeMinima"`
	CurrentQuantity int    `json:"quantidadeAtual"`
	AlertActive     *bool  `json:"avisoAtivo"`
}

type UpdateStockItemInput struct {
	Name            *string `json:"nome"`
	MinimumQuantity *int    `json:"quantidadeMinima"`
	CurrentQuantity *int    `json:"quantidadeAtual"`
	AlertActive     *bool   `json:"avisoAtivo"`
}

// StockOverview is the list response: every item plus those that need
// restocking.
type StockOverview struct {
	Items  []*repository.StockItem `json:"itens"`
	Alerts []*repository.StockItem `json:"alertas"`
}

type StockService interface {
	List(ctx context.Context) (*StockOverview, error)
	Create(ctx context.Context, actor Actor, input CreateStockItemInput) (*repository.StockItem, error)
	Update(ctx context.Context, actor Actor, id string, input UpdateStockItemInput) (*repository.StockItem, error)
	Delete(ctx context.Context, id string) error
}

type stockService struct {
	store repository.Store
}

func NewStockService(store repository.Store) StockService {
	return &stockService{store: store}
}

func (s *stockService) List(ctx context.Context) (*StockOverview, error) {
	items, err := s.store.StockItems().List(ctx)
	if err != nil {
		return nil, err
	}
	overview := &StockOverview{Items: []*repository.StockItem{}, Alerts: []*repository.StockItem{}}
	for _, it := range items {
		overview.Items = append(overview.Items, it)
		if it.BelowMinimum() {
			overview.Alerts = append(overview.Alerts, it)
		}
	}
	return overview, nil
}

func (s *stockService) Create(ctx context.Context, actor Actor, input CreateStockItemInput) (*repository.StockItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("Nome é obrigatório")
	}
	if input.MinimumQuantity < 0 || input.CurrentQuantity < 0 {
		return nil, invalid("Quantidades não podem ser negativas")
	}
	item := &repository.StockItem{
		Name:            name,
		MinimumQuantity: input.MinimumQuantity,
		CurrentQuantity: input.CurrentQuantity,
		AlertActive:     input.AlertActive == nil || *input.AlertActive,
		CreatedBy:       actor.ref(),
	}
	if err := s.store.StockItems().Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}
	return item, nil
}

func (s *stockService) find(ctx context.Context, id string) (*repository.StockItem, error) {
	item, err := s.store.StockItems().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *stockService) Update(ctx context.Context, actor Actor, id string, input UpdateStockItemInput) (*repository.StockItem, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalid("Nome é obrigatório")
		}
		item.Name = name
	}
	if input.MinimumQuantity != nil {
		if *input.MinimumQuantity < 0 {
			return nil, invalid("Quantidades não podem ser negativas")
		}
		item.MinimumQuantity = *input.MinimumQuantity
	}
	if input.CurrentQuantity != nil {
		if *input.CurrentQuantity < 0 {
			return nil, invalid("Quantidades não podem ser negativas")
		}
		item.CurrentQuantity = *input.CurrentQuantity
	}
	if input.AlertActive != nil {
		item.AlertActive = *input.AlertActive
	}
	item.UpdatedBy = actor.ref()
	if err := s.store.StockItems().Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update stock item: %w", err)
	}
	return item, nil
}

func (s *stockService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.store.StockItems().Delete(ctx, id)
}
