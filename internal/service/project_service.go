package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/notification"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/camarpe/camarpe-backend/internal/workflow"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================
// Project Service
// ============================================

const (
	defaultProjectLimit = 50
	maxProjectLimit     = 100
	detailLogLimit      = 50
	historyLogLimit     = 200
	notifyTimeout       = 10 * time.Second
)

var hundred = decimal.NewFromInt(100)

type CreateProjectInput struct {
	Name              string              `json:"nome"`
	LeadID            *string             `json:"leadId"`
	TotalValue        decimal.NullDecimal `json:"valorTotal"`
	MaterialsCost     decimal.NullDecimal `json:"custoMateriais"`
	LaborCost         decimal.NullDecimal `json:"custoMaoObra"`
	MarginPct         decimal.NullDecimal `json:"margemPct"`
	MDFSheets         *int                `json:"qtdChapasMdf"`
	PlannedDeliveryAt *string             `json:"dataEntregaPrevista"`
	FinalPaymentDueAt *string             `json:"dataPagamentoFinalPrevista"`
	Notes             *string             `json:"observacoes"`
	QuoteLink         *string             `json:"linkOrcamento"`
	ModelLink         *string             `json:"linkProjeto3d"`
}

// UpdateProjectInput is a PATCH body. Status may be combined with the other
// fields; a body carrying only Status is a plain transition.
type UpdateProjectInput struct {
	Name                *string                 `json:"nome"`
	TotalValue          decimal.NullDecimal     `json:"valorTotal"`
	Status              *types.ProductionStatus `json:"statusProducao"`
	PlannedDeliveryAt   *string                 `json:"dataEntregaPrevista"`
	ActualDeliveryAt    *string                 `json:"dataEntregaReal"`
	ProductionStartedAt *string                 `json:"dataInicioProducao"`
	FinalPaymentDueAt   *string                 `json:"dataPagamentoFinalPrevista"`
	Notes               *string                 `json:"observacoes"`
	QuoteLink           *string                 `json:"linkOrcamento"`
	ModelLink           *string                 `json:"linkProjeto3d"`
	MaterialsCost       decimal.NullDecimal     `json:"custoMateriais"`
	LaborCost           decimal.NullDecimal     `json:"custoMaoObra"`
	MarginPct           decimal.NullDecimal     `json:"margemPct"`
	MDFSheets           *int                    `json:"qtdChapasMdf"`
	Materials           *[]MaterialInput        `json:"materiais"`
}

// MaterialInput is one line of a materials list. The whole list is sent on
// every change.
type MaterialInput struct {
	Description string `json:"descricao"`
	Quantity    *int   `json:"quantidade"`
}

// HasFieldChanges reports whether the body touches anything besides status.
func (in UpdateProjectInput) HasFieldChanges() bool {
	return in.Name != nil || in.TotalValue.Valid || in.PlannedDeliveryAt != nil ||
		in.ActualDeliveryAt != nil || in.ProductionStartedAt != nil || in.FinalPaymentDueAt != nil ||
		in.Notes != nil || in.QuoteLink != nil || in.ModelLink != nil ||
		in.MaterialsCost.Valid || in.LaborCost.Valid || in.MarginPct.Valid || in.MDFSheets != nil ||
		in.Materials != nil
}

type ConvertLeadInput struct {
	ProjectName   string              `json:"nomeProjeto"`
	TotalValue    decimal.NullDecimal `json:"valorTotal"`
	MaterialsCost decimal.NullDecimal `json:"custoMateriais"`
	LaborCost     decimal.NullDecimal `json:"custoMaoObra"`
	MarginPct     decimal.NullDecimal `json:"margemPct"`
	MDFSheets     *int                `json:"qtdChapasMdf"`
}

type UpdateChecklistInput struct {
	SheetsBought   *bool   `json:"chapasCompradas"`
	HardwareBought *bool   `json:"ferragensCompradas"`
	OtherItems     *string `json:"outrosItens"`
}

type ProjectPage struct {
	Data       []*repository.Project `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"totalPages"`
}

type ProjectDetail struct {
	*repository.Project
	Payments   []*repository.Payment   `json:"pagamentos"`
	Checklist  *repository.Checklist   `json:"checklist"`
	StatusLogs []*repository.StatusLog `json:"statusLogs"`
	Materials  []*repository.Material  `json:"materiais"`
}

// ProjectExporter is the read side used by Export.
type ProjectExporter interface {
	ProjectExport(ctx context.Context, status types.ProductionStatus) ([]repository.ProjectExportRow, error)
}

type ProjectService interface {
	Create(ctx context.Context, actor Actor, input CreateProjectInput) (*repository.Project, error)
	List(ctx context.Context, filter repository.ProjectFilter) (*ProjectPage, error)
	Get(ctx context.Context, id string) (*ProjectDetail, error)
	Update(ctx context.Context, actor Actor, id string, input UpdateProjectInput) (*repository.Project, error)
	Transition(ctx context.Context, actor Actor, id string, status types.ProductionStatus) (*repository.Project, error)
	Kanban(ctx context.Context, status types.ProductionStatus) ([]workflow.Column[*repository.Project], error)
	StatusLog(ctx context.Context, id string) ([]*repository.StatusLog, error)
	GetChecklist(ctx context.Context, id string) (*repository.Checklist, error)
	UpdateChecklist(ctx context.Context, id string, input UpdateChecklistInput) (*repository.Checklist, error)
	ConvertLead(ctx context.Context, actor Actor, leadID string, input ConvertLeadInput) (*repository.Project, error)
	Export(ctx context.Context, status types.ProductionStatus, w io.Writer) error
}

type projectService struct {
	store    repository.Store
	exporter ProjectExporter
	notifier notification.Notifier
	log      *zap.Logger
}

func NewProjectService(store repository.Store, exporter ProjectExporter, notifier notification.Notifier, log *zap.Logger) ProjectService {
	return &projectService{
		store:    store,
		exporter: exporter,
		notifier: notifier,
		log:      log.With(zap.String("component", "projects")),
	}
}

// projectTotal takes the explicit total when positive, otherwise
// (materials + labor) * (1 + margin/100).
func projectTotal(total, materials, labor, margin decimal.NullDecimal) (decimal.Decimal, error) {
	if total.Valid && total.Decimal.IsPositive() {
		return total.Decimal, nil
	}
	if !(materials.Valid || labor.Valid) || !margin.Valid {
		return decimal.Zero, invalid("Informe valor total ou custos + margem para calcular")
	}
	base := materials.Decimal.Add(labor.Decimal)
	computed := base.Mul(decimal.NewFromInt(1).Add(margin.Decimal.Div(hundred))).Round(2)
	if !computed.IsPositive() {
		return decimal.Zero, invalid("Valor total deve ser maior que zero")
	}
	return computed, nil
}

func nonNegative(field string, values ...decimal.NullDecimal) error {
	for _, v := range values {
		if v.Valid && v.Decimal.IsNegative() {
			return invalid("%s não pode ser negativo", field)
		}
	}
	return nil
}

func (s *projectService) Create(ctx context.Context, actor Actor, input CreateProjectInput) (*repository.Project, error) {
	if err := authorize(actor, types.SalesRoles...); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("Nome do projeto é obrigatório")
	}
	if err := nonNegative("Custo", input.MaterialsCost, input.LaborCost); err != nil {
		return nil, err
	}
	total, err := projectTotal(input.TotalValue, input.MaterialsCost, input.LaborCost, input.MarginPct)
	if err != nil {
		return nil, err
	}

	project := &repository.Project{
		Name:             name,
		LeadID:           trimmed(input.LeadID),
		TotalValue:       total,
		PaidValue:        decimal.Zero,
		PendingValue:     total,
		ProductionStatus: types.StatusAwaitingFiles,
		Notes:            trimmed(input.Notes),
		MaterialsCost:    input.MaterialsCost,
		LaborCost:        input.LaborCost,
		MarginPct:        input.MarginPct,
		MDFSheets:        input.MDFSheets,
		CreatedBy:        actor.ref(),
	}
	if project.PlannedDeliveryAt, err = parseOptionalDay(input.PlannedDeliveryAt); err != nil {
		return nil, err
	}
	if project.FinalPaymentDueAt, err = parseOptionalDay(input.FinalPaymentDueAt); err != nil {
		return nil, err
	}
	if project.QuoteLink, err = optionalURL(input.QuoteLink, "Link do orçamento"); err != nil {
		return nil, err
	}
	if project.ModelLink, err = optionalURL(input.ModelLink, "Link do projeto 3D"); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if project.LeadID != nil {
			lead, err := tx.Leads().FindByID(ctx, *project.LeadID)
			if err != nil {
				return err
			}
			if lead == nil {
				return invalid("Lead não encontrado")
			}
		}
		if err := tx.Projects().Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return tx.Projects().CreateChecklist(ctx, &repository.Checklist{ProjectID: project.ID})
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context, filter repository.ProjectFilter) (*ProjectPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultProjectLimit
	}
	if filter.Limit > maxProjectLimit {
		filter.Limit = maxProjectLimit
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalid("Status inválido")
	}

	projects, total, err := s.store.Projects().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*repository.Project{}
	}
	return &ProjectPage{
		Data:       projects,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

func findProject(ctx context.Context, store repository.Store, id string, lock bool) (*repository.Project, error) {
	var (
		project *repository.Project
		err     error
	)
	if lock {
		project, err = store.Projects().FindByIDForUpdate(ctx, id)
	} else {
		project, err = store.Projects().FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

func (s *projectService) Get(ctx context.Context, id string) (*ProjectDetail, error) {
	project, err := findProject(ctx, s.store, id, false)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	checklist, err := s.store.Projects().GetChecklist(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.Projects().ListStatusLogs(ctx, id, detailLogLimit)
	if err != nil {
		return nil, err
	}
	materials, err := s.store.Projects().ListMaterials(ctx, id)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []*repository.Payment{}
	}
	if logs == nil {
		logs = []*repository.StatusLog{}
	}
	if materials == nil {
		materials = []*repository.Material{}
	}
	return &ProjectDetail{
		Project:    project,
		Payments:   payments,
		Checklist:  checklist,
		StatusLogs: logs,
		Materials:  materials,
	}, nil
}

func (s *projectService) Update(ctx context.Context, actor Actor, id string, input UpdateProjectInput) (*repository.Project, error) {
	if !input.HasFieldChanges() {
		if input.Status == nil {
			return nil, invalid("Nenhum campo para atualizar")
		}
		return s.Transition(ctx, actor, id, *input.Status)
	}
	if err := authorize(actor, types.SalesRoles...); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, invalid("Status inválido")
	}
	materials, err := materialList(input.Materials)
	if err != nil {
		return nil, err
	}

	var (
		updated *repository.Project
		from    types.ProductionStatus
	)
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		project, err := findProject(ctx, tx, id, true)
		if err != nil {
			return err
		}
		from = project.ProductionStatus

		if err := applyProjectUpdate(project, input); err != nil {
			return err
		}
		project.UpdatedBy = actor.ref()
		if err := tx.Projects().Update(ctx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		if input.Materials != nil {
			if err := tx.Projects().ReplaceMaterials(ctx, project.ID, materials); err != nil {
				return fmt.Errorf("failed to save materials: %w", err)
			}
		}

		if project.ProductionStatus != from {
			if err := tx.Projects().AddStatusLog(ctx, &repository.StatusLog{
				ProjectID:  project.ID,
				FromStatus: from,
				ToStatus:   project.ProductionStatus,
				UserID:     actor.ref(),
			}); err != nil {
				return fmt.Errorf("failed to log status change: %w", err)
			}
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.ProductionStatus != from {
		s.notify(ctx, notification.ProjectStatusChanged(updated.ID, updated.Name, from, updated.ProductionStatus))
	}
	return updated, nil
}

// materialList validates a materials body. A nil body means the list is
// left alone; an empty one clears it.
func materialList(in *[]MaterialInput) ([]*repository.Material, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]*repository.Material, 0, len(*in))
	for i, m := range *in {
		description := strings.TrimSpace(m.Description)
		if description == "" {
			return nil, invalid("Material %d: descrição é obrigatória", i+1)
		}
		if m.Quantity != nil && *m.Quantity < 0 {
			return nil, invalid("Material %d: quantidade não pode ser negativa", i+1)
		}
		out = append(out, &repository.Material{Description: description, Quantity: m.Quantity})
	}
	return out, nil
}

func applyProjectUpdate(p *repository.Project, in UpdateProjectInput) error {
	var err error
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return invalid("Nome do projeto é obrigatório")
		}
		p.Name = name
	}
	if err := nonNegative("Custo", in.MaterialsCost, in.LaborCost); err != nil {
		return err
	}
	if in.TotalValue.Valid {
		if !in.TotalValue.Decimal.IsPositive() {
			return invalid("Valor total deve ser maior que zero")
		}
		pending := in.TotalValue.Decimal.Sub(p.PaidValue)
		if pending.IsNegative() {
			return invalid("Valor total não pode ser menor que o valor já pago")
		}
		p.TotalValue = in.TotalValue.Decimal
		p.PendingValue = pending
	}
	if in.Status != nil {
		p.ProductionStatus = *in.Status
	}
	if in.PlannedDeliveryAt != nil {
		if p.PlannedDeliveryAt, err = parseOptionalDay(in.PlannedDeliveryAt); err != nil {
			return err
		}
	}
	if in.ActualDeliveryAt != nil {
		if p.ActualDeliveryAt, err = parseOptionalDay(in.ActualDeliveryAt); err != nil {
			return err
		}
	}
	if in.ProductionStartedAt != nil {
		if p.ProductionStartedAt, err = parseOptionalDay(in.ProductionStartedAt); err != nil {
			return err
		}
	}
	if in.FinalPaymentDueAt != nil {
		if p.FinalPaymentDueAt, err = parseOptionalDay(in.FinalPaymentDueAt); err != nil {
			return err
		}
	}
	if in.Notes != nil {
		p.Notes = trimmed(in.Notes)
	}
	if in.QuoteLink != nil {
		if p.QuoteLink, err = optionalURL(in.QuoteLink, "Link do orçamento"); err != nil {
			return err
		}
	}
	if in.ModelLink != nil {
		if p.ModelLink, err = optionalURL(in.ModelLink, "Link do projeto 3D"); err != nil {
			return err
		}
	}
	if in.MaterialsCost.Valid {
		p.MaterialsCost = in.MaterialsCost
	}
	if in.LaborCost.Valid {
		p.LaborCost = in.LaborCost
	}
	if in.MarginPct.Valid {
		p.MarginPct = in.MarginPct
	}
	if in.MDFSheets != nil {
		p.MDFSheets = in.MDFSheets
	}
	return nil
}

// Transition moves a project to status and records the move. Moving to the
// current status writes nothing.
func (s *projectService) Transition(ctx context.Context, actor Actor, id string, status types.ProductionStatus) (*repository.Project, error) {
	if err := authorize(actor, types.AllRoles...); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("Status inválido")
	}

	project, err := findProject(ctx, s.store, id, false)
	if err != nil {
		return nil, err
	}
	if project.ProductionStatus == status {
		return project, nil
	}

	var from types.ProductionStatus
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		locked, err := findProject(ctx, tx, id, true)
		if err != nil {
			return err
		}
		from = locked.ProductionStatus
		if from == status {
			return nil
		}
		if err := tx.Projects().UpdateStatus(ctx, id, status, actor.ref()); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		return tx.Projects().AddStatusLog(ctx, &repository.StatusLog{
			ProjectID:  id,
			FromStatus: from,
			ToStatus:   status,
			UserID:     actor.ref(),
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := findProject(ctx, s.store, id, false)
	if err != nil {
		return nil, err
	}
	if from != status {
		s.log.Info("project status changed",
			zap.String("project_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(status)),
			zap.String("user_id", actor.UserID),
		)
		s.notify(ctx, notification.ProjectStatusChanged(updated.ID, updated.Name, from, status))
	}
	return updated, nil
}

// notify fans the alert out after the write has committed. Failures are
// logged and never reach the caller.
func (s *projectService) notify(ctx context.Context, alert notification.Alert) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyRoles(ctx, types.SalesRoles, alert); err != nil {
			s.log.Warn("failed to send notification", zap.String("type", alert.Type), zap.Error(err))
		}
	}()
}

func (s *projectService) Kanban(ctx context.Context, status types.ProductionStatus) ([]workflow.Column[*repository.Project], error) {
	if status != "" && !status.IsValid() {
		return nil, invalid("Status inválido")
	}
	projects, err := s.store.Projects().ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	statusOf := func(p *repository.Project) types.ProductionStatus { return p.ProductionStatus }
	if status != "" {
		return workflow.KanbanFor(projects, status, statusOf), nil
	}
	return workflow.Kanban(projects, statusOf), nil
}

func (s *projectService) StatusLog(ctx context.Context, id string) ([]*repository.StatusLog, error) {
	if _, err := findProject(ctx, s.store, id, false); err != nil {
		return nil, err
	}
	logs, err := s.store.Projects().ListStatusLogs(ctx, id, historyLogLimit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*repository.StatusLog{}
	}
	return logs, nil
}

func (s *projectService) GetChecklist(ctx context.Context, id string) (*repository.Checklist, error) {
	if _, err := findProject(ctx, s.store, id, false); err != nil {
		return nil, err
	}
	checklist, err := s.store.Projects().GetChecklist(ctx, id)
	if err != nil {
		return nil, err
	}
	if checklist == nil {
		return &repository.Checklist{ProjectID: id}, nil
	}
	return checklist, nil
}

func (s *projectService) UpdateChecklist(ctx context.Context, id string, input UpdateChecklistInput) (*repository.Checklist, error) {
	checklist, err := s.GetChecklist(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.SheetsBought != nil {
		checklist.SheetsBought = *input.SheetsBought
	}
	if input.HardwareBought != nil {
		checklist.HardwareBought = *input.HardwareBought
	}
	if input.OtherItems != nil {
		checklist.OtherItems = trimmed(input.OtherItems)
	}
	if err := s.store.Projects().UpsertChecklist(ctx, checklist); err != nil {
		return nil, fmt.Errorf("failed to save checklist: %w", err)
	}
	return checklist, nil
}

// ConvertLead turns a lead into a project: the project, its checklist and
// the lead status change commit together.
func (s *projectService) ConvertLead(ctx context.Context, actor Actor, leadID string, input ConvertLeadInput) (*repository.Project, error) {
	if err := authorize(actor, types.SalesRoles...); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.ProjectName)
	if name == "" {
		return nil, invalid("Nome do projeto é obrigatório")
	}
	if err := nonNegative("Custo", input.MaterialsCost, input.LaborCost); err != nil {
		return nil, err
	}
	total, err := projectTotal(input.TotalValue, input.MaterialsCost, input.LaborCost, input.MarginPct)
	if err != nil {
		return nil, err
	}

	var (
		project  *repository.Project
		leadName string
	)
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		lead, err := tx.Leads().FindByID(ctx, leadID)
		if err != nil {
			return err
		}
		if lead == nil {
			return ErrNotFound
		}
		leadName = lead.Name

		project = &repository.Project{
			Name:             name,
			LeadID:           &lead.ID,
			TotalValue:       total,
			PaidValue:        decimal.Zero,
			PendingValue:     total,
			ProductionStatus: types.StatusAwaitingFiles,
			QuoteLink:        lead.QuoteLink,
			ModelLink:        lead.ModelLink,
			MaterialsCost:    input.MaterialsCost,
			LaborCost:        input.LaborCost,
			MarginPct:        input.MarginPct,
			MDFSheets:        input.MDFSheets,
			CreatedBy:        actor.ref(),
		}
		if err := tx.Projects().Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		lead.Status = types.LeadContractSigned
		lead.UpdatedBy = actor.ref()
		if err := tx.Leads().Update(ctx, lead); err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}
		return tx.Projects().CreateChecklist(ctx, &repository.Checklist{ProjectID: project.ID})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notification.LeadConverted(project.ID, project.Name, leadName))
	return project, nil
}

var projectExportHeader = []string{
	"Nome", "Cliente", "Telefone", "Status produção", "Valor total", "Entrada paga", "Pendente",
	"Data pag. final prev.", "Data entrega prev.", "Data entrega real", "Criado em",
}

// Export writes the projects, optionally for one stage, as CSV with CRLF
// line endings.
func (s *projectService) Export(ctx context.Context, status types.ProductionStatus, w io.Writer) error {
	if status != "" && !status.IsValid() {
		return invalid("Status inválido")
	}
	rows, err := s.exporter.ProjectExport(ctx, status)
	if err != nil {
		return err
	}

	out := csv.NewWriter(w)
	out.UseCRLF = true
	if err := out.Write(projectExportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Name,
			deref(r.LeadName),
			deref(r.LeadPhone),
			r.ProductionStatus.Label(),
			r.TotalValue.StringFixed(2),
			r.PaidValue.StringFixed(2),
			r.PendingValue.StringFixed(2),
			exportDay(r.FinalPaymentDueAt),
			exportDay(r.PlannedDeliveryAt),
			exportDay(r.ActualDeliveryAt),
			r.CreatedAt.Format("02/01/2006"),
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func exportDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}
