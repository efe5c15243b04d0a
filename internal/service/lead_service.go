package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/camarpe/camarpe-backend/internal/importer"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
)

// ============================================
// Lead Service
// ============================================

const (
	defaultLeadLimit = 200
	maxLeadLimit     = 200
)

type CreateLeadInput struct {
	Name               string            `json:"nome"`
	Email              *string           `json:"email"`
	Phone              string            `json:"telefone"`
	Channel            types.LeadChannel `json:"origem"`
	ProjectDescription *string           `json:"descricaoProjeto"`
	Notes              *string           `json:"observacoes"`
	LastContactAt      *string           `json:"dataUltimoContato"`
	QuoteLink          *string           `json:"linkOrcamento"`
	ModelLink          *string           `json:"linkProjeto3d"`
	Address            *string           `json:"endereco"`
}

// UpdateLeadInput is a partial update; nil fields are left untouched and
// empty strings clear optional fields.
type UpdateLeadInput struct {
	Name               *string            `json:"nome"`
	Email              *string            `json:"email"`
	Phone              *string            `json:"telefone"`
	Channel            *types.LeadChannel `json:"origem"`
	Status             *types.LeadStatus  `json:"status"`
	LossReason         *string            `json:"motivoPerda"`
	ProjectDescription *string            `json:"descricaoProjeto"`
	Notes              *string            `json:"observacoes"`
	LastContactAt      *string            `json:"dataUltimoContato"`
	QuoteLink          *string            `json:"linkOrcamento"`
	ModelLink          *string            `json:"linkProjeto3d"`
	Address            *string            `json:"endereco"`
}

type AddActivityInput struct {
	Type        types.ActivityType `json:"tipo"`
	Description *string            `json:"descricao"`
}

// LeadDetail is a lead with its projects and timeline.
type LeadDetail struct {
	*repository.Lead
	Projects   []*repository.Project      `json:"projetos"`
	Activities []*repository.LeadActivity `json:"atividades"`
}

// LeadExporter is the read side used by Export.
type LeadExporter interface {
	LeadExport(ctx context.Context, filter repository.LeadFilter) ([]repository.LeadExportRow, error)
}

type LeadService interface {
	Create(ctx context.Context, actor Actor, input CreateLeadInput) (*repository.Lead, error)
	List(ctx context.Context, filter repository.LeadFilter) ([]*repository.Lead, error)
	Get(ctx context.Context, id string) (*LeadDetail, error)
	Update(ctx context.Context, actor Actor, id string, input UpdateLeadInput) (*LeadDetail, error)
	Delete(ctx context.Context, id string) error
	ListActivities(ctx context.Context, leadID string) ([]*repository.LeadActivity, error)
	AddActivity(ctx context.Context, actor Actor, leadID string, input AddActivityInput) (*repository.LeadActivity, error)
	Export(ctx context.Context, filter repository.LeadFilter, w io.Writer) error
}

type leadService struct {
	store    repository.Store
	exporter LeadExporter
}

func NewLeadService(store repository.Store, exporter LeadExporter) LeadService {
	return &leadService{store: store, exporter: exporter}
}

func (s *leadService) Create(ctx context.Context, actor Actor, input CreateLeadInput) (*repository.Lead, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	switch {
	case name == "":
		return nil, invalid("Nome é obrigatório")
	case phone == "":
		return nil, invalid("Telefone é obrigatório")
	case !input.Channel.IsValid():
		return nil, invalid("Origem inválida")
	}

	lead := &repository.Lead{
		Name:               name,
		NameKey:            importer.NameKey(name),
		Phone:              phone,
		Channel:            input.Channel,
		Status:             types.LeadNew,
		ProjectDescription: trimmed(input.ProjectDescription),
		Notes:              trimmed(input.Notes),
		Address:            trimmed(input.Address),
		CreatedBy:          actor.ref(),
	}

	var err error
	if lead.Email, err = optionalEmail(input.Email); err != nil {
		return nil, err
	}
	if lead.QuoteLink, err = optionalURL(input.QuoteLink, "Link do orçamento"); err != nil {
		return nil, err
	}
	if lead.ModelLink, err = optionalURL(input.ModelLink, "Link do projeto 3D"); err != nil {
		return nil, err
	}
	if lead.LastContactAt, err = parseOptionalDay(input.LastContactAt); err != nil {
		return nil, err
	}

	if err := s.store.Leads().Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

func (s *leadService) List(ctx context.Context, filter repository.LeadFilter) ([]*repository.Lead, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLeadLimit
	}
	if filter.Limit > maxLeadLimit {
		filter.Limit = maxLeadLimit
	}
	leads, err := s.store.Leads().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []*repository.Lead{}
	}
	return leads, nil
}

func (s *leadService) find(ctx context.Context, store repository.Store, id string) (*repository.Lead, error) {
	lead, err := store.Leads().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrNotFound
	}
	return lead, nil
}

func (s *leadService) Get(ctx context.Context, id string) (*LeadDetail, error) {
	lead, err := s.find(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, lead)
}

func (s *leadService) detail(ctx context.Context, lead *repository.Lead) (*LeadDetail, error) {
	projects, _, err := s.store.Projects().List(ctx, repository.ProjectFilter{LeadID: lead.ID})
	if err != nil {
		return nil, err
	}
	activities, err := s.store.Leads().ListActivities(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*repository.Project{}
	}
	if activities == nil {
		activities = []*repository.LeadActivity{}
	}
	return &LeadDetail{Lead: lead, Projects: projects, Activities: activities}, nil
}

func (s *leadService) Update(ctx context.Context, actor Actor, id string, input UpdateLeadInput) (*LeadDetail, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, invalid("Status inválido")
	}

	var updated *repository.Lead
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		lead, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		previous := lead.Status

		if err := applyLeadUpdate(lead, input); err != nil {
			return err
		}
		// A lost lead keeps a reason whichever fields the patch carried.
		if lead.Status == types.LeadLost && lead.LossReason == nil {
			return invalid("Motivo da perda é obrigatório quando status é Perdido")
		}
		lead.UpdatedBy = actor.ref()

		if err := tx.Leads().Update(ctx, lead); err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}

		if input.Status != nil && *input.Status != previous {
			activityType := types.ActivityNote
			if *input.Status == types.LeadQuoteSent {
				activityType = types.ActivityQuoteSent
			}
			description := "Status alterado para " + string(*input.Status)
			if err := tx.Leads().AddActivity(ctx, &repository.LeadActivity{
				LeadID:      lead.ID,
				Type:        activityType,
				Description: &description,
				UserID:      actor.ref(),
			}); err != nil {
				return fmt.Errorf("failed to record status change: %w", err)
			}
		}
		updated = lead
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, updated)
}

func applyLeadUpdate(lead *repository.Lead, input UpdateLeadInput) error {
	var err error
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return invalid("Nome é obrigatório")
		}
		lead.Name = name
		lead.NameKey = importer.NameKey(name)
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return invalid("Telefone é obrigatório")
		}
		lead.Phone = phone
	}
	if input.Email != nil {
		if lead.Email, err = optionalEmail(input.Email); err != nil {
			return err
		}
	}
	if input.Channel != nil {
		if !input.Channel.IsValid() {
			return invalid("Origem inválida")
		}
		lead.Channel = *input.Channel
	}
	if input.Status != nil {
		lead.Status = *input.Status
	}
	if input.LossReason != nil {
		lead.LossReason = trimmed(input.LossReason)
	}
	if input.ProjectDescription != nil {
		lead.ProjectDescription = trimmed(input.ProjectDescription)
	}
	if input.Notes != nil {
		lead.Notes = trimmed(input.Notes)
	}
	if input.Address != nil {
		lead.Address = trimmed(input.Address)
	}
	if input.LastContactAt != nil {
		if lead.LastContactAt, err = parseOptionalDay(input.LastContactAt); err != nil {
			return err
		}
	}
	if input.QuoteLink != nil {
		if lead.QuoteLink, err = optionalURL(input.QuoteLink, "Link do orçamento"); err != nil {
			return err
		}
	}
	if input.ModelLink != nil {
		if lead.ModelLink, err = optionalURL(input.ModelLink, "Link do projeto 3D"); err != nil {
			return err
		}
	}
	return nil
}

func (s *leadService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, s.store, id); err != nil {
		return err
	}
	return s.store.Leads().Delete(ctx, id)
}

func (s *leadService) ListActivities(ctx context.Context, leadID string) ([]*repository.LeadActivity, error) {
	if _, err := s.find(ctx, s.store, leadID); err != nil {
		return nil, err
	}
	activities, err := s.store.Leads().ListActivities(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []*repository.LeadActivity{}
	}
	return activities, nil
}

func (s *leadService) AddActivity(ctx context.Context, actor Actor, leadID string, input AddActivityInput) (*repository.LeadActivity, error) {
	if !input.Type.IsValid() {
		return nil, invalid("Tipo de atividade inválido")
	}
	if _, err := s.find(ctx, s.store, leadID); err != nil {
		return nil, err
	}

	activity := &repository.LeadActivity{
		LeadID:      leadID,
		Type:        input.Type,
		Description: trimmed(input.Description),
		UserID:      actor.ref(),
	}
	if err := s.store.Leads().AddActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to add activity: %w", err)
	}
	return activity, nil
}

var leadExportHeader = []string{
	"Nome", "E-mail", "Telefone", "Origem", "Status", "Motivo perda", "Projeto", "Criado em", "Atualizado em",
}

// Export writes the filtered leads as CSV with CRLF line endings.
func (s *leadService) Export(ctx context.Context, filter repository.LeadFilter, w io.Writer) error {
	rows, err := s.exporter.LeadExport(ctx, filter)
	if err != nil {
		return err
	}

	out := csv.NewWriter(w)
	out.UseCRLF = true
	if err := out.Write(leadExportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Name,
			deref(r.Email),
			r.Phone,
			r.Channel.Label(),
			r.Status.Label(),
			deref(r.LossReason),
			deref(r.ProjectDescription),
			r.CreatedAt.Format("02/01/2006"),
			r.UpdatedAt.Format("02/01/2006"),
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
