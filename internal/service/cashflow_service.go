package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Cash Flow Service
// ============================================

type CreateCashEntryInput struct {
	Type            types.LedgerType       `json:"tipo"`
	Amount          decimal.Decimal        `json:"valor"`
	Date            string                 `json:"data"`
	DueAt           *string                `json:"dataVencimento"`
	Category        *types.ExpenseCategory `json:"categoria"`
	Description     string                 `json:"descricao"`
	SalaryReference *string                `json:"referenciaSalario"`
	Status          types.LedgerStatus     `json:"status"`
	ProjectID       *string                `json:"projetoId"`
}

type UpdateCashEntryInput struct {
	Type            *types.LedgerType      `json:"tipo"`
	Amount          decimal.NullDecimal    `json:"valor"`
	Date            *string                `json:"data"`
	DueAt           *string                `json:"dataVencimento"`
	Category        *types.ExpenseCategory `json:"categoria"`
	Description     *string                `json:"descricao"`
	SalaryReference *string                `json:"referenciaSalario"`
	Status          *types.LedgerStatus    `json:"status"`
	ProjectID       *string                `json:"projetoId"`
}

// CashListFilter mirrors the query string of the ledger list.
type CashListFilter struct {
	Month     string
	Type      types.LedgerType
	Status    types.LedgerStatus
	ProjectID string
	Payables  bool
}

type CashReport struct {
	Month                string                  `json:"mes"`
	PlannedInflows       decimal.Decimal         `json:"entradasPrevisto"`
	PaidInflows          decimal.Decimal         `json:"entradasPago"`
	ProjectInflows       decimal.Decimal         `json:"entradasProjetos"`
	TotalPlannedInflows  decimal.Decimal         `json:"entradasTotalPrevisto"`
	TotalRealizedInflows decimal.Decimal         `json:"entradasTotalRealizado"`
	PlannedOutflows      decimal.Decimal         `json:"saidasPrevisto"`
	PaidOutflows         decimal.Decimal         `json:"saidasPago"`
	ProjectedBalance     decimal.Decimal         `json:"saldoPrevisto"`
	RealizedBalance      decimal.Decimal         `json:"saldoRealizado"`
	Entries              []*repository.CashEntry `json:"movimentacoes"`
}

type CashFlowService interface {
	Create(ctx context.Context, actor Actor, input CreateCashEntryInput) (*repository.CashEntry, error)
	List(ctx context.Context, filter CashListFilter) ([]*repository.CashEntry, error)
	Get(ctx context.Context, id string) (*repository.CashEntry, error)
	Update(ctx context.Context, actor Actor, id string, input UpdateCashEntryInput) (*repository.CashEntry, error)
	Delete(ctx context.Context, id string) error
	Report(ctx context.Context, month string) (*CashReport, error)
}

type cashFlowService struct {
	store repository.Store
	loc   *time.Location
	now   func() time.Time
}

func NewCashFlowService(store repository.Store) CashFlowService {
	return &cashFlowService{store: store, loc: time.Local, now: time.Now}
}

func (s *cashFlowService) Create(ctx context.Context, actor Actor, input CreateCashEntryInput) (*repository.CashEntry, error) {
	if !input.Type.IsValid() {
		return nil, invalid("Tipo inválido")
	}
	if !input.Amount.IsPositive() {
		return nil, invalid("Valor deve ser maior que zero")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, invalid("Descrição é obrigatória")
	}
	if strings.TrimSpace(input.Date) == "" {
		return nil, invalid("Data é obrigatória")
	}
	status := input.Status
	if status == "" {
		status = types.LedgerPlanned
	}
	if !status.IsValid() {
		return nil, invalid("Status inválido")
	}

	date, err := ParseDay(input.Date)
	if err != nil {
		return nil, err
	}
	entry := &repository.CashEntry{
		Type:            input.Type,
		Amount:          input.Amount,
		Date:            date,
		Description:     description,
		SalaryReference: trimmed(input.SalaryReference),
		Status:          status,
		ProjectID:       trimmed(input.ProjectID),
		CreatedBy:       actor.ref(),
	}
	if entry.DueAt, err = parseOptionalDay(input.DueAt); err != nil {
		return nil, err
	}
	if entry.Category, err = outflowCategory(entry.Type, input.Category); err != nil {
		return nil, err
	}

	now := s.now()
	if entry.Status == types.LedgerPaid {
		entry.PaidAt = &now
	}
	if entry.Type == types.LedgerOutflow && entry.Status == types.LedgerPlanned && s.dueToday(entry, now) {
		entry.Status = types.LedgerPaid
		entry.PaidAt = &now
	}

	if err := s.checkProject(ctx, entry.ProjectID); err != nil {
		return nil, err
	}
	if err := s.store.CashEntries().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create cash entry: %w", err)
	}
	return entry, nil
}

func (s *cashFlowService) dueToday(entry *repository.CashEntry, now time.Time) bool {
	today := now.In(s.loc)
	if sameDay(entry.Date.In(s.loc), today) {
		return true
	}
	return entry.DueAt != nil && sameDay(entry.DueAt.In(s.loc), today)
}

func outflowCategory(t types.LedgerType, category *types.ExpenseCategory) (*types.ExpenseCategory, error) {
	if t != types.LedgerOutflow || category == nil || *category == "" {
		return nil, nil
	}
	if !category.IsValid() {
		return nil, invalid("Categoria inválida")
	}
	c := *category
	return &c, nil
}

func (s *cashFlowService) checkProject(ctx context.Context, projectID *string) error {
	if projectID == nil {
		return nil
	}
	project, err := s.store.Projects().FindByID(ctx, *projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return invalid("Projeto não encontrado")
	}
	return nil
}

// List returns ledger entries. A project filter ignores the month and lists
// newest first; otherwise entries come in date order.
func (s *cashFlowService) List(ctx context.Context, filter CashListFilter) ([]*repository.CashEntry, error) {
	q := repository.CashFilter{
		Type:         filter.Type,
		Status:       filter.Status,
		ProjectID:    filter.ProjectID,
		PayablesOnly: filter.Payables,
	}
	if q.Type != "" && !q.Type.IsValid() {
		return nil, invalid("Tipo inválido")
	}
	if q.Status != "" && !q.Status.IsValid() {
		return nil, invalid("Status inválido")
	}
	if filter.ProjectID == "" && filter.Month != "" {
		from, to, err := ParseMonth(filter.Month, time.UTC)
		if err != nil {
			return nil, err
		}
		q.From, q.To = &from, &to
	}

	entries, err := s.store.CashEntries().List(ctx, q)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return []*repository.CashEntry{}, nil
	}
	if filter.ProjectID == "" && !filter.Payables {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	}
	return entries, nil
}

func (s *cashFlowService) Get(ctx context.Context, id string) (*repository.CashEntry, error) {
	entry, err := s.store.CashEntries().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *cashFlowService) Update(ctx context.Context, actor Actor, id string, input UpdateCashEntryInput) (*repository.CashEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, invalid("Tipo inválido")
		}
		entry.Type = *input.Type
	}
	if input.Amount.Valid {
		if !input.Amount.Decimal.IsPositive() {
			return nil, invalid("Valor deve ser maior que zero")
		}
		entry.Amount = input.Amount.Decimal
	}
	if input.Date != nil {
		if entry.Date, err = ParseDay(*input.Date); err != nil {
			return nil, err
		}
	}
	if input.DueAt != nil {
		if entry.DueAt, err = parseOptionalDay(input.DueAt); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, invalid("Descrição é obrigatória")
		}
		entry.Description = description
	}
	if input.SalaryReference != nil {
		entry.SalaryReference = trimmed(input.SalaryReference)
	}
	if input.Category != nil {
		if entry.Category, err = outflowCategory(entry.Type, input.Category); err != nil {
			return nil, err
		}
	} else if entry.Type != types.LedgerOutflow {
		entry.Category = nil
	}
	if input.ProjectID != nil {
		entry.ProjectID = trimmed(input.ProjectID)
		if err := s.checkProject(ctx, entry.ProjectID); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, invalid("Status inválido")
		}
		switch {
		case *input.Status == types.LedgerPaid && entry.Status != types.LedgerPaid:
			now := s.now()
			entry.PaidAt = &now
		case *input.Status == types.LedgerPlanned:
			entry.PaidAt = nil
		}
		entry.Status = *input.Status
	}

	entry.UpdatedBy = actor.ref()
	if err := s.store.CashEntries().Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update cash entry: %w", err)
	}
	return entry, nil
}

func (s *cashFlowService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.store.CashEntries().Delete(ctx, id)
}

// Report sums one calendar month of the ledger plus the project payments
// received in it.
func (s *cashFlowService) Report(ctx context.Context, month string) (*CashReport, error) {
	if strings.TrimSpace(month) == "" {
		return nil, invalid("Parâmetro mes (YYYY-MM) obrigatório")
	}
	from, to, err := ParseMonth(month, time.UTC)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.CashEntries().List(ctx, repository.CashFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	received, err := s.store.Payments().SumReceivedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	r := &CashReport{Month: from.Format("2006-01"), ProjectInflows: received, Entries: entries}
	for _, e := range entries {
		switch {
		case e.Type == types.LedgerInflow && e.Status == types.LedgerPaid:
			r.PaidInflows = r.PaidInflows.Add(e.Amount)
		case e.Type == types.LedgerInflow:
			r.PlannedInflows = r.PlannedInflows.Add(e.Amount)
		case e.Status == types.LedgerPaid:
			r.PaidOutflows = r.PaidOutflows.Add(e.Amount)
		default:
			r.PlannedOutflows = r.PlannedOutflows.Add(e.Amount)
		}
	}
	if r.Entries == nil {
		r.Entries = []*repository.CashEntry{}
	}
	sort.SliceStable(r.Entries, func(i, j int) bool { return r.Entries[i].Date.Before(r.Entries[j].Date) })

	r.TotalPlannedInflows = r.PlannedInflows.Add(received)
	r.TotalRealizedInflows = r.PaidInflows.Add(received)
	r.ProjectedBalance = r.PlannedInflows.Add(received).Sub(r.PlannedOutflows).Sub(r.PaidOutflows)
	r.RealizedBalance = r.PaidInflows.Add(received).Sub(r.PaidOutflows)
	return r, nil
}
