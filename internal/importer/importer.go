// Package importer folds the company's four legacy spreadsheets (clients,
// quotes, production and financial) into leads, projects and payments.
//
// Stages run in a fixed order and share a run-local Lookup that is passed
// explicitly from one stage to the next. A bad row is reported and skipped;
// the run as a whole is never rolled back.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const importedPhone = "Importado"

// Stats is the run summary returned to the caller.
type Stats struct {
	LeadsCreated    int      `json:"leadsCriados"`
	LeadsUpdated    int      `json:"leadsAtualizados"`
	ProjectsCreated int      `json:"projetosCriados"`
	ProjectsUpdated int      `json:"projetosAtualizados"`
	PaymentsCreated int      `json:"pagamentosCriados"`
	Errors          []string `json:"erros"`
}

func (s *Stats) add(o Stats, warnings []string) {
	s.LeadsCreated += o.LeadsCreated
	s.LeadsUpdated += o.LeadsUpdated
	s.ProjectsCreated += o.ProjectsCreated
	s.ProjectsUpdated += o.ProjectsUpdated
	s.PaymentsCreated += o.PaymentsCreated
	s.Errors = append(s.Errors, warnings...)
}

// Lookup is the identity table built during one run.
type Lookup struct {
	// Leads maps NameKey(client name) to a lead id.
	Leads map[string]string
	// Projects maps the production sheet ID column to a project id.
	Projects map[string]string
}

func NewLookup() Lookup {
	return Lookup{Leads: map[string]string{}, Projects: map[string]string{}}
}

func (l Lookup) clone() Lookup {
	out := NewLookup()
	for k, v := range l.Leads {
		out.Leads[k] = v
	}
	for k, v := range l.Projects {
		out.Projects[k] = v
	}
	return out
}

// Stage processes the rows of one spreadsheet.
type Stage func(ctx context.Context, rows []Row, lookup Lookup) (Lookup, Stats, []string)

type Importer struct {
	store repository.Store
	log   *zap.Logger
}

func New(store repository.Store, log *zap.Logger) *Importer {
	return &Importer{store: store, log: log.With(zap.String("component", "import"))}
}

// Run parses and imports whichever spreadsheets are present in files.
func (im *Importer) Run(ctx context.Context, actorID string, files map[Kind]io.Reader) (*Stats, error) {
	r := &run{store: im.store, actor: &actorID}
	stages := map[Kind]Stage{
		KindClients:    r.clients,
		KindQuotes:     r.quotes,
		KindProduction: r.production,
		KindFinancial:  r.financial,
	}

	stats := &Stats{Errors: []string{}}
	lookup := NewLookup()
	for _, kind := range Kinds {
		src, ok := files[kind]
		if !ok || src == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rows, err := ReadRows(src)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: arquivo inválido: %v", kind, err))
			if len(rows) == 0 {
				continue
			}
		}
		var (
			st       Stats
			warnings []string
		)
		lookup, st, warnings = stages[kind](ctx, rows, lookup)
		stats.add(st, warnings)
		im.log.Info("stage finished",
			zap.String("kind", string(kind)),
			zap.Int("rows", len(rows)),
			zap.Int("warnings", len(warnings)))
	}
	return stats, nil
}

type run struct {
	store repository.Store
	actor *string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// resolveLead loads the lead behind key for stages that mutate it, preferring
// the id already registered in the run table. It returns nil when the client
// is unknown.
func (r *run) resolveLead(ctx context.Context, key string, lookup Lookup) (*repository.Lead, error) {
	if id, ok := lookup.Leads[key]; ok {
		lead, err := r.store.Leads().FindByID(ctx, id)
		if err != nil || lead != nil {
			return lead, err
		}
	}
	return r.store.Leads().FindByNameKey(ctx, key)
}

// leadIDFor returns the lead id for key without touching the store when the
// run has already seen the name. Unknown clients are created.
func (r *run) leadIDFor(ctx context.Context, key, name string, lookup Lookup) (string, bool, error) {
	if id, ok := lookup.Leads[key]; ok {
		return id, false, nil
	}
	lead, err := r.store.Leads().FindByNameKey(ctx, key)
	if err != nil {
		return "", false, err
	}
	if lead != nil {
		return lead.ID, false, nil
	}
	lead = r.newLead(name)
	if err := r.store.Leads().Create(ctx, lead); err != nil {
		return "", false, err
	}
	return lead.ID, true, nil
}

func (r *run) newLead(name string) *repository.Lead {
	return &repository.Lead{
		Name:      name,
		NameKey:   NameKey(name),
		Phone:     importedPhone,
		Channel:   types.ChannelReferral,
		Status:    types.LeadNew,
		CreatedBy: r.actor,
	}
}

func (r *run) clients(ctx context.Context, rows []Row, in Lookup) (Lookup, Stats, []string) {
	lookup := in.clone()
	var (
		stats    Stats
		warnings []string
	)
	for i, row := range rows {
		name := row.Field("Nome do Cliente", "Nome")
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("Clientes: linha %d sem nome do cliente", i+2))
			continue
		}
		key := NameKey(name)
		phone := row.Field("Telefone / WhatsApp", "Telefone")
		if phone == "" {
			phone = importedPhone
		}
		email := row.Field("E-mail", "Email")
		address := row.Field("Endereço (p/ Entrega e Medição)", "Endereço")
		channel := ChannelRules.Resolve(row.Field("Observações", "Obs."))

		lead, err := r.resolveLead(ctx, key, lookup)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Clientes: %s: %v", name, err))
			continue
		}
		if lead != nil {
			lead.Phone = phone
			if email != "" {
				lead.Email = &email
			}
			if address != "" {
				lead.Address = &address
			}
			lead.Channel = channel
			lead.UpdatedBy = r.actor
			if err := r.store.Leads().Update(ctx, lead); err != nil {
				warnings = append(warnings, fmt.Sprintf("Clientes: %s: %v", name, err))
				continue
			}
			stats.LeadsUpdated++
		} else {
			lead = r.newLead(name)
			lead.Phone = phone
			lead.Email = optional(email)
			lead.Address = optional(address)
			lead.Channel = channel
			if err := r.store.Leads().Create(ctx, lead); err != nil {
				warnings = append(warnings, fmt.Sprintf("Clientes: %s: %v", name, err))
				continue
			}
			stats.LeadsCreated++
		}
		lookup.Leads[key] = lead.ID
	}
	return lookup, stats, warnings
}

func (r *run) quotes(ctx context.Context, rows []Row, in Lookup) (Lookup, Stats, []string) {
	lookup := in.clone()
	var (
		stats    Stats
		warnings []string
	)
	for i, row := range rows {
		name := row.Field("Nome do Cliente", "Nome")
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("Orçamentos: linha %d sem nome do cliente", i+2))
			continue
		}
		key := NameKey(name)
		description := row.Field("Descrição do Projeto")
		notes := row.Field("Observações")
		quoteLink := row.Field("Link - Orçamento")
		modelLink := row.Field("Link - Projeto 3D")
		status := QuoteStatusRules.Resolve(row.Field("Status do Orçamento"))
		lastContact := ParseDate(row.Field("Data do ultimo contato"))

		lead, err := r.resolveLead(ctx, key, lookup)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Orçamentos: %s: %v", name, err))
			continue
		}
		created := lead == nil
		if created {
			lead = r.newLead(name)
		}
		if description != "" {
			lead.ProjectDescription = &description
		}
		if notes != "" {
			lead.Notes = &notes
		}
		if quoteLink != "" {
			lead.QuoteLink = &quoteLink
		}
		if modelLink != "" {
			lead.ModelLink = &modelLink
		}
		if lastContact != nil {
			lead.LastContactAt = lastContact
		}
		lead.Status = status

		if created {
			err = r.store.Leads().Create(ctx, lead)
		} else {
			lead.UpdatedBy = r.actor
			err = r.store.Leads().Update(ctx, lead)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Orçamentos: %s: %v", name, err))
			continue
		}
		if created {
			stats.LeadsCreated++
		} else {
			stats.LeadsUpdated++
		}
		lookup.Leads[key] = lead.ID

		if status != types.LeadContractSigned {
			continue
		}
		value, ok := ParseAmount(row.Field("Valor Proposto"))
		if !ok || !value.IsPositive() {
			continue
		}
		projectName := description
		if projectName == "" {
			projectName = name
		}
		var made bool
		err = r.store.WithTx(ctx, func(tx repository.Store) error {
			existing, err := tx.Projects().FindByLeadAndName(ctx, lead.ID, projectName)
			if err != nil || existing != nil {
				return err
			}
			project := &repository.Project{
				Name:         projectName,
				LeadID:       &lead.ID,
				TotalValue:   value,
				PaidValue:    decimal.Zero,
				PendingValue: value,
				QuoteLink:    optional(quoteLink),
				ModelLink:    optional(modelLink),
				CreatedBy:    r.actor,
			}
			if err := tx.Projects().Create(ctx, project); err != nil {
				return err
			}
			made = true
			return tx.Projects().CreateChecklist(ctx, &repository.Checklist{ProjectID: project.ID})
		})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Orçamentos: projeto %q de %s: %v", projectName, name, err))
			continue
		}
		if made {
			stats.ProjectsCreated++
		}
	}
	return lookup, stats, warnings
}

func (r *run) production(ctx context.Context, rows []Row, in Lookup) (Lookup, Stats, []string) {
	lookup := in.clone()
	var (
		stats    Stats
		warnings []string
	)
	for i, row := range rows {
		externalID := row.Field("ID")
		client := row.Field("Cliente")
		projectName := row.Field("Descrição do Projeto", "Descrição")
		if client == "" || projectName == "" {
			warnings = append(warnings, fmt.Sprintf("Produção: linha %d sem cliente ou descrição do projeto", i+2))
			continue
		}
		key := NameKey(client)

		leadID, createdLead, err := r.leadIDFor(ctx, key, client, lookup)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Produção: %s: %v", client, err))
			continue
		}
		if createdLead {
			stats.LeadsCreated++
		}
		lookup.Leads[key] = leadID

		value, hasValue := ParseAmount(row.Field("Valor do Projeto"))
		hasValue = hasValue && value.IsPositive()
		status := ProductionStatusRules.Resolve(row.Field("Status Atual"))
		started := ParseDate(row.Field("Início (Produção)"))
		delivery := ParseDate(row.Field("Prazo (Entrega)"))
		delivered := status == types.StatusDelivered
		notes := row.Field("Obs.", "Observações")

		var (
			projectID string
			created   bool
			warning   string
		)
		err = r.store.WithTx(ctx, func(tx repository.Store) error {
			project, err := tx.Projects().FindByLeadAndName(ctx, leadID, projectName)
			if err != nil {
				return err
			}
			if project == nil {
				total := decimal.Zero
				if hasValue {
					total = value
				}
				project = &repository.Project{
					Name:                projectName,
					LeadID:              &leadID,
					TotalValue:          total,
					PaidValue:           decimal.Zero,
					PendingValue:        total,
					ProductionStatus:    status,
					ProductionStartedAt: started,
					Notes:               optional(notes),
					ExternalSheetID:     optional(externalID),
					CreatedBy:           r.actor,
				}
				if delivery != nil {
					if delivered {
						project.ActualDeliveryAt = delivery
					} else {
						project.PlannedDeliveryAt = delivery
					}
				}
				if err := tx.Projects().Create(ctx, project); err != nil {
					return err
				}
				if err := tx.Projects().CreateChecklist(ctx, &repository.Checklist{ProjectID: project.ID}); err != nil {
					return err
				}
				projectID, created = project.ID, true
				return nil
			}

			previous := project.ProductionStatus
			project.ProductionStatus = status
			if started != nil {
				project.ProductionStartedAt = started
			}
			if delivery != nil {
				if delivered {
					project.ActualDeliveryAt = delivery
				} else {
					project.PlannedDeliveryAt = delivery
				}
			}
			if hasValue {
				pending := value.Sub(project.PaidValue)
				if pending.IsNegative() {
					warning = fmt.Sprintf("Produção: valor de %q (%s) menor que o já pago; valor mantido", projectName, value.StringFixed(2))
				} else {
					project.TotalValue = value
					project.PendingValue = pending
				}
			}
			if notes != "" {
				project.Notes = &notes
			}
			if externalID != "" {
				project.ExternalSheetID = &externalID
			}
			project.UpdatedBy = r.actor
			if err := tx.Projects().Update(ctx, project); err != nil {
				return err
			}
			if previous != status {
				if err := tx.Projects().AddStatusLog(ctx, &repository.StatusLog{
					ProjectID:  project.ID,
					FromStatus: previous,
					ToStatus:   status,
					UserID:     r.actor,
				}); err != nil {
					return err
				}
			}
			projectID = project.ID
			return nil
		})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Produção: projeto %q de %s: %v", projectName, client, err))
			continue
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		if created {
			stats.ProjectsCreated++
		} else {
			stats.ProjectsUpdated++
		}
		if externalID != "" {
			lookup.Projects[externalID] = projectID
		}
	}
	return lookup, stats, warnings
}

func (r *run) financial(ctx context.Context, rows []Row, in Lookup) (Lookup, Stats, []string) {
	lookup := in.clone()
	var (
		stats    Stats
		warnings []string
	)
	for _, row := range rows {
		amount, ok := ParseAmount(row.Field("Valor"))
		if !ok || !amount.IsPositive() {
			continue
		}
		client := row.Field("Cliente")
		description := row.Field("Descrição do Pgto")

		projectID := lookup.Projects[row.Field("ID PRODUÇÃO", "ID PRODUCAO", "ID")]
		if projectID == "" {
			firstWord := ""
			if words := strings.Fields(description); len(words) > 0 {
				firstWord = words[0]
			}
			project, err := r.store.Projects().FindByLeadKeyAndNameContains(ctx, NameKey(client), firstWord)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Financeiro: %s: %v", client, err))
				continue
			}
			if project != nil {
				projectID = project.ID
			}
		}
		if projectID == "" {
			warnings = append(warnings, fmt.Sprintf("Financeiro: projeto não encontrado para %q / %s", client, description))
			continue
		}

		payment := &repository.Payment{
			ProjectID:   projectID,
			Amount:      amount,
			Type:        PaymentTypeFor(description),
			ReceivedAt:  ParseDate(row.Field("Data Recebimento")),
			DueAt:       ParseDate(row.Field("Data Vencimento")),
			Note:        optional(description),
			ReceiptLink: optional(row.Field("Link - Comp/NF")),
			CreatedBy:   r.actor,
		}

		err := r.store.WithTx(ctx, func(tx repository.Store) error {
			if err := tx.Payments().Create(ctx, payment); err != nil {
				return err
			}
			if payment.ReceivedAt == nil {
				return nil
			}
			project, err := tx.Projects().FindByIDForUpdate(ctx, projectID)
			if err != nil || project == nil {
				return err
			}
			pending := project.PendingValue.Sub(amount)
			if pending.IsNegative() {
				return nil
			}
			due := project.FinalPaymentDueAt
			if payment.Type == types.PaymentFinal {
				due = nil
			}
			return tx.Projects().UpdateBalances(ctx, projectID, project.PaidValue.Add(amount), pending, due)
		})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Financeiro: %s / %s: %v", client, description, err))
			continue
		}
		stats.PaymentsCreated++
	}
	return lookup, stats, warnings
}
