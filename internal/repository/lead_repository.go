package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/google/uuid"
)

type Lead struct {
	ID                 string            `json:"id" db:"id"`
	Name               string            `json:"nome" db:"name"`
	NameKey            string            `json:"-" db:"name_key"`
	Phone              string            `json:"telefone" db:"phone"`
	Email              *string           `json:"email" db:"email"`
	Address            *string           `json:"endereco" db:"address"`
	Channel            types.LeadChannel `json:"origem" db:"channel"`
	Status             types.LeadStatus  `json:"status" db:"status"`
	LossReason         *string           `json:"motivoPerda" db:"loss_reason"`
	ProjectDescription *string           `json:"descricaoProjeto" db:"project_description"`
	Notes              *string           `json:"observacoes" db:"notes"`
	QuoteLink          *string           `json:"linkOrcamento" db:"quote_link"`
	ModelLink          *string           `json:"linkProjeto3d" db:"model_link"`
	LastContactAt      *time.Time        `json:"dataUltimoContato" db:"last_contact_at"`
	CreatedBy          *string           `json:"createdById" db:"created_by"`
	UpdatedBy          *string           `json:"updatedById" db:"updated_by"`
	CreatedAt          time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time         `json:"updatedAt" db:"updated_at"`
}

// LeadActivity is an append-only timeline entry.
type LeadActivity struct {
	ID          string             `json:"id"`
	LeadID      string             `json:"leadId"`
	Type        types.ActivityType `json:"tipo"`
	Description *string            `json:"descricao"`
	UserID      *string            `json:"usuarioId"`
	UserName    *string            `json:"usuarioNome,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type LeadFilter struct {
	Status  types.LeadStatus
	Channel types.LeadChannel
	Search  string
	Limit   int
}

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	// FindByNameKey matches the normalized identity key exactly.
	FindByNameKey(ctx context.Context, key string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	Update(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id string) error

	AddActivity(ctx context.Context, activity *LeadActivity) error
	ListActivities(ctx context.Context, leadID string) ([]*LeadActivity, error)
}

type pgLeadRepository struct {
	db DBTX
}

const leadColumns = `id, name, name_key, phone, email, address, channel, status, loss_reason,
	project_description, notes, quote_link, model_link, last_contact_at,
	created_by, updated_by, created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (*Lead, error) {
	l := &Lead{}
	err := row.Scan(
		&l.ID, &l.Name, &l.NameKey, &l.Phone, &l.Email, &l.Address, &l.Channel, &l.Status, &l.LossReason,
		&l.ProjectDescription, &l.Notes, &l.QuoteLink, &l.ModelLink, &l.LastContactAt,
		&l.CreatedBy, &l.UpdatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *pgLeadRepository) Create(ctx context.Context, lead *Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	query := `
		INSERT INTO leads (
			id, name, name_key, phone, email, address, channel, status, loss_reason,
			project_description, notes, quote_link, model_link, last_contact_at,
			created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		lead.ID, lead.Name, lead.NameKey, lead.Phone, lead.Email, lead.Address, lead.Channel, lead.Status,
		lead.LossReason, lead.ProjectDescription, lead.Notes, lead.QuoteLink, lead.ModelLink,
		lead.LastContactAt, lead.CreatedBy,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
}

func (r *pgLeadRepository) FindByID(ctx context.Context, id string) (*Lead, error) {
	l, err := scanLead(r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	return l, err
}

func (r *pgLeadRepository) FindByNameKey(ctx context.Context, key string) (*Lead, error) {
	l, err := scanLead(r.db.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE name_key = $1 ORDER BY created_at LIMIT 1`, key))
	if isNoRows(err) {
		return nil, nil
	}
	return l, err
}

func (r *pgLeadRepository) List(ctx context.Context, filter LeadFilter) ([]*Lead, error) {
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

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC LIMIT " + arg(filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *pgLeadRepository) Update(ctx context.Context, lead *Lead) error {
	query := `
		UPDATE leads SET
			name = $2, name_key = $3, phone = $4, email = $5, address = $6, channel = $7, status = $8,
			loss_reason = $9, project_description = $10, notes = $11, quote_link = $12, model_link = $13,
			last_contact_at = $14, updated_by = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		lead.ID, lead.Name, lead.NameKey, lead.Phone, lead.Email, lead.Address, lead.Channel, lead.Status,
		lead.LossReason, lead.ProjectDescription, lead.Notes, lead.QuoteLink, lead.ModelLink,
		lead.LastContactAt, lead.UpdatedBy,
	).Scan(&lead.UpdatedAt)
}

func (r *pgLeadRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	return err
}

func (r *pgLeadRepository) AddActivity(ctx context.Context, activity *LeadActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	query := `
		INSERT INTO lead_activities (id, lead_id, type, description, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		activity.ID, activity.LeadID, activity.Type, activity.Description, activity.UserID,
	).Scan(&activity.CreatedAt)
}

func (r *pgLeadRepository) ListActivities(ctx context.Context, leadID string) ([]*LeadActivity, error) {
	query := `
		SELECT a.id, a.lead_id, a.type, a.description, a.user_id, u.name, a.created_at
		FROM lead_activities a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.lead_id = $1
		ORDER BY a.created_at DESC`
	rows, err := r.db.Query(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*LeadActivity
	for rows.Next() {
		a := &LeadActivity{}
		if err := rows.Scan(&a.ID, &a.LeadID, &a.Type, &a.Description, &a.UserID, &a.UserName, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
