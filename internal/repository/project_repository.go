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

type Project struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"nome"`
	LeadID              *string                `json:"leadId"`
	LeadName            *string                `json:"leadNome,omitempty"`
	TotalValue          decimal.Decimal        `json:"valorTotal"`
	PaidValue           decimal.Decimal        `json:"valorEntradaPago"`
	PendingValue        decimal.Decimal        `json:"valorPendente"`
	ProductionStatus    types.ProductionStatus `json:"statusProducao"`
	FinalPaymentDueAt   *time.Time             `json:"dataPagamentoFinalPrevista"`
	PlannedDeliveryAt   *time.Time             `json:"dataEntregaPrevista"`
	ActualDeliveryAt    *time.Time             `json:"dataEntregaReal"`
	ProductionStartedAt *time.Time             `json:"dataInicioProducao"`
	Notes               *string                `json:"observacoes"`
	QuoteLink           *string                `json:"linkOrcamento"`
	ModelLink           *string                `json:"linkProjeto3d"`
	MaterialsCost       decimal.NullDecimal    `json:"custoMateriais"`
	LaborCost           decimal.NullDecimal    `json:"custoMaoObra"`
	MarginPct           decimal.NullDecimal    `json:"margemPct"`
	MDFSheets           *int                   `json:"qtdChapasMdf"`
	ExternalSheetID     *string                `json:"idPlanilha"`
	CreatedBy           *string                `json:"createdById"`
	UpdatedBy           *string                `json:"updatedById"`
	CreatedAt           time.Time              `json:"createdAt"`
	UpdatedAt           time.Time              `json:"updatedAt"`
}

type StatusLog struct {
	ID         string                 `json:"id"`
	ProjectID  string                 `json:"projetoId"`
	FromStatus types.ProductionStatus `json:"deStatus"`
	ToStatus   types.ProductionStatus `json:"paraStatus"`
	UserID     *string                `json:"usuarioId"`
	UserName   *string                `json:"usuarioNome,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

type Checklist struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projetoId"`
	SheetsBought   bool      `json:"chapasCompradas"`
	HardwareBought bool      `json:"ferragensCompradas"`
	OtherItems     *string   `json:"outrosItens"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Material is one line of the project's cut/purchase list.
type Material struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projetoId"`
	Description string    `json:"descricao"`
	Quantity    *int      `json:"quantidade"`
	Position    int       `json:"ordem"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProjectOrder selects the list ordering.
type ProjectOrder string

const (
	OrderByName    ProjectOrder = "nome"
	OrderByValue   ProjectOrder = "valor"
	OrderByUpdated ProjectOrder = "atualizado"
)

type ProjectFilter struct {
	LeadID string
	Status types.ProductionStatus
	Search string
	From   *time.Time
	To     *time.Time
	Order  ProjectOrder
	Page   int
	Limit  int
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*Project, error)
	FindByLeadAndName(ctx context.Context, leadID, name string) (*Project, error)
	FindByLeadKeyAndNameContains(ctx context.Context, leadKey, fragment string) (*Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*Project, int, error)
	ListByStatus(ctx context.Context, status types.ProductionStatus) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	UpdateStatus(ctx context.Context, id string, status types.ProductionStatus, userID *string) error
	UpdateBalances(ctx context.Context, id string, paid, pending decimal.Decimal, finalPaymentDueAt *time.Time) error

	AddStatusLog(ctx context.Context, log *StatusLog) error
	ListStatusLogs(ctx context.Context, projectID string, limit int) ([]*StatusLog, error)

	CreateChecklist(ctx context.Context, checklist *Checklist) error
	GetChecklist(ctx context.Context, projectID string) (*Checklist, error)
	UpsertChecklist(ctx context.Context, checklist *Checklist) error

	ListMaterials(ctx context.Context, projectID string) ([]*Material, error)
	// ReplaceMaterials swaps the whole list; Position follows slice order.
	ReplaceMaterials(ctx context.Context, projectID string, materials []*Material) error
}

type pgProjectRepository struct {
	db DBTX
}

const projectSelect = `
	SELECT p.id, p.name, p.lead_id, l.name, p.total_value, p.paid_value, p.pending_value,
		p.production_status, p.final_payment_due_at, p.planned_delivery_at, p.actual_delivery_at,
		p.production_started_at, p.notes, p.quote_link, p.model_link, p.materials_cost, p.labor_cost,
		p.margin_pct, p.mdf_sheets, p.external_sheet_id, p.created_by, p.updated_by, p.created_at, p.updated_at
	FROM projects p
	LEFT JOIN leads l ON l.id = p.lead_id`

func scanProject(row interface{ Scan(...any) error }) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID, &p.Name, &p.LeadID, &p.LeadName, &p.TotalValue, &p.PaidValue, &p.PendingValue,
		&p.ProductionStatus, &p.FinalPaymentDueAt, &p.PlannedDeliveryAt, &p.ActualDeliveryAt,
		&p.ProductionStartedAt, &p.Notes, &p.QuoteLink, &p.ModelLink, &p.MaterialsCost, &p.LaborCost,
		&p.MarginPct, &p.MDFSheets, &p.ExternalSheetID, &p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProjectRepository) queryOne(ctx context.Context, query string, args ...any) (*Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx, query, args...))
	if isNoRows(err) {
		return nil, nil
	}
	return p, err
}

func (r *pgProjectRepository) queryMany(ctx context.Context, query string, args ...any) ([]*Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.ProductionStatus == "" {
		project.ProductionStatus = types.StatusAwaitingFiles
	}
	query := `
		INSERT INTO projects (
			id, name, lead_id, total_value, paid_value, pending_value, production_status,
			final_payment_due_at, planned_delivery_at, actual_delivery_at, production_started_at,
			notes, quote_link, model_link, materials_cost, labor_cost, margin_pct, mdf_sheets,
			external_sheet_id, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		project.ID, project.Name, project.LeadID, project.TotalValue, project.PaidValue, project.PendingValue,
		project.ProductionStatus, project.FinalPaymentDueAt, project.PlannedDeliveryAt, project.ActualDeliveryAt,
		project.ProductionStartedAt, project.Notes, project.QuoteLink, project.ModelLink,
		project.MaterialsCost, project.LaborCost, project.MarginPct, project.MDFSheets,
		project.ExternalSheetID, project.CreatedBy,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	return r.queryOne(ctx, projectSelect+` WHERE p.id = $1`, id)
}

func (r *pgProjectRepository) FindByIDForUpdate(ctx context.Context, id string) (*Project, error) {
	return r.queryOne(ctx, projectSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id)
}

func (r *pgProjectRepository) FindByLeadAndName(ctx context.Context, leadID, name string) (*Project, error) {
	return r.queryOne(ctx,
		projectSelect+` WHERE p.lead_id = $1 AND LOWER(p.name) = LOWER($2) ORDER BY p.created_at LIMIT 1`,
		leadID, name)
}

func (r *pgProjectRepository) FindByLeadKeyAndNameContains(ctx context.Context, leadKey, fragment string) (*Project, error) {
	return r.queryOne(ctx,
		projectSelect+` WHERE l.name_key = $1 AND p.name ILIKE '%' || $2 || '%' ORDER BY p.created_at LIMIT 1`,
		leadKey, fragment)
}

func (r *pgProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]*Project, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.LeadID != "" {
		conds = append(conds, "p.lead_id = "+arg(filter.LeadID))
	}
	if filter.Status != "" {
		conds = append(conds, "p.production_status = "+arg(filter.Status))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, fmt.Sprintf("(p.name ILIKE %s OR l.name ILIKE %s)", p, p))
	}
	if filter.From != nil {
		conds = append(conds, "p.created_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "p.created_at <= "+arg(*filter.To))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM projects p LEFT JOIN leads l ON l.id = p.lead_id` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "p.updated_at DESC"
	switch filter.Order {
	case OrderByName:
		orderBy = "p.name ASC"
	case OrderByValue:
		orderBy = "p.total_value DESC"
	}

	query := projectSelect + where + " ORDER BY " + orderBy
	if filter.Limit > 0 && filter.Page > 0 {
		offset := (filter.Page - 1) * filter.Limit
		query += " LIMIT " + arg(filter.Limit) + " OFFSET " + arg(offset)
	}

	projects, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *pgProjectRepository) ListByStatus(ctx context.Context, status types.ProductionStatus) ([]*Project, error) {
	if status == "" {
		return r.queryMany(ctx, projectSelect+` ORDER BY p.updated_at DESC`)
	}
	return r.queryMany(ctx, projectSelect+` WHERE p.production_status = $1 ORDER BY p.updated_at DESC`, status)
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET
			name = $2, lead_id = $3, total_value = $4, paid_value = $5, pending_value = $6,
			production_status = $7, final_payment_due_at = $8, planned_delivery_at = $9,
			actual_delivery_at = $10, production_started_at = $11, notes = $12, quote_link = $13,
			model_link = $14, materials_cost = $15, labor_cost = $16, margin_pct = $17,
			mdf_sheets = $18, external_sheet_id = $19, updated_by = $20, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		project.ID, project.Name, project.LeadID, project.TotalValue, project.PaidValue, project.PendingValue,
		project.ProductionStatus, project.FinalPaymentDueAt, project.PlannedDeliveryAt, project.ActualDeliveryAt,
		project.ProductionStartedAt, project.Notes, project.QuoteLink, project.ModelLink,
		project.MaterialsCost, project.LaborCost, project.MarginPct, project.MDFSheets,
		project.ExternalSheetID, project.UpdatedBy,
	).Scan(&project.UpdatedAt)
}

func (r *pgProjectRepository) UpdateStatus(ctx context.Context, id string, status types.ProductionStatus, userID *string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET production_status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`,
		id, status, userID)
	return err
}

func (r *pgProjectRepository) UpdateBalances(ctx context.Context, id string, paid, pending decimal.Decimal, finalPaymentDueAt *time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE projects SET paid_value = $2, pending_value = $3, final_payment_due_at = $4, updated_at = NOW()
		WHERE id = $1`,
		id, paid, pending, finalPaymentDueAt)
	return err
}

func (r *pgProjectRepository) AddStatusLog(ctx context.Context, log *StatusLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	query := `
		INSERT INTO project_status_logs (id, project_id, from_status, to_status, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		log.ID, log.ProjectID, log.FromStatus, log.ToStatus, log.UserID,
	).Scan(&log.CreatedAt)
}

func (r *pgProjectRepository) ListStatusLogs(ctx context.Context, projectID string, limit int) ([]*StatusLog, error) {
	query := `
		SELECT s.id, s.project_id, s.from_status, s.to_status, s.user_id, u.name, s.created_at
		FROM project_status_logs s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.project_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*StatusLog
	for rows.Next() {
		s := &StatusLog{}
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.FromStatus, &s.ToStatus, &s.UserID, &s.UserName, &s.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, s)
	}
	return logs, rows.Err()
}

func (r *pgProjectRepository) CreateChecklist(ctx context.Context, checklist *Checklist) error {
	if checklist.ID == "" {
		checklist.ID = uuid.NewString()
	}
	query := `
		INSERT INTO purchase_checklists (id, project_id, sheets_bought, hardware_bought, other_items)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		checklist.ID, checklist.ProjectID, checklist.SheetsBought, checklist.HardwareBought, checklist.OtherItems,
	).Scan(&checklist.CreatedAt, &checklist.UpdatedAt)
}

func (r *pgProjectRepository) GetChecklist(ctx context.Context, projectID string) (*Checklist, error) {
	c := &Checklist{}
	err := r.db.QueryRow(ctx, `
		SELECT id, project_id, sheets_bought, hardware_bought, other_items, created_at, updated_at
		FROM purchase_checklists WHERE project_id = $1`, projectID,
	).Scan(&c.ID, &c.ProjectID, &c.SheetsBought, &c.HardwareBought, &c.OtherItems, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgProjectRepository) UpsertChecklist(ctx context.Context, checklist *Checklist) error {
	if checklist.ID == "" {
		checklist.ID = uuid.NewString()
	}
	query := `
		INSERT INTO purchase_checklists (id, project_id, sheets_bought, hardware_bought, other_items)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id) DO UPDATE SET
			sheets_bought = EXCLUDED.sheets_bought,
			hardware_bought = EXCLUDED.hardware_bought,
			other_items = EXCLUDED.other_items,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		checklist.ID, checklist.ProjectID, checklist.SheetsBought, checklist.HardwareBought, checklist.OtherItems,
	).Scan(&checklist.ID, &checklist.CreatedAt, &checklist.UpdatedAt)
}

func (r *pgProjectRepository) ListMaterials(ctx context.Context, projectID string) ([]*Material, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, description, quantity, position, created_at
		FROM project_materials
		WHERE project_id = $1
		ORDER BY position, created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []*Material
	for rows.Next() {
		m := &Material{}
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Description, &m.Quantity, &m.Position, &m.CreatedAt); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (r *pgProjectRepository) ReplaceMaterials(ctx context.Context, projectID string, materials []*Material) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM project_materials WHERE project_id = $1`, projectID); err != nil {
		return err
	}
	for i, m := range materials {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.ProjectID = projectID
		m.Position = i
		err := r.db.QueryRow(ctx, `
			INSERT INTO project_materials (id, project_id, description, quantity, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			m.ID, m.ProjectID, m.Description, m.Quantity, m.Position,
		).Scan(&m.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}
