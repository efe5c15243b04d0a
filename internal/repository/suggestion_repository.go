package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/google/uuid"
)

type Suggestion struct {
	ID          string                 `json:"id"`
	Text        string                 `json:"texto"`
	Stage       *string                `json:"etapa"`
	ProjectID   *string                `json:"projetoId"`
	ProjectName *string                `json:"projetoNome,omitempty"`
	Status      types.SuggestionStatus `json:"status"`
	UserID      string                 `json:"usuarioId"`
	UserName    *string                `json:"usuarioNome,omitempty"`
	UpdatedBy   *string                `json:"updatedById"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

type SuggestionFilter struct {
	Status    types.SuggestionStatus
	ProjectID string
	// AuthorID restricts the list to one author when set.
	AuthorID string
}

type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *Suggestion) error
	FindByID(ctx context.Context, id string) (*Suggestion, error)
	List(ctx context.Context, filter SuggestionFilter) ([]*Suggestion, error)
	UpdateStatus(ctx context.Context, id string, status types.SuggestionStatus, userID *string) error
}

type pgSuggestionRepository struct {
	db DBTX
}

const suggestionSelect = `
	SELECT s.id, s.text, s.stage, s.project_id, p.name, s.status, s.user_id, u.name, s.updated_by, s.created_at, s.updated_at
	FROM suggestions s
	LEFT JOIN projects p ON p.id = s.project_id
	LEFT JOIN users u ON u.id = s.user_id`

func scanSuggestion(row interface{ Scan(...any) error }) (*Suggestion, error) {
	s := &Suggestion{}
	err := row.Scan(&s.ID, &s.Text, &s.Stage, &s.ProjectID, &s.ProjectName, &s.Status,
		&s.UserID, &s.UserName, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgSuggestionRepository) Create(ctx context.Context, suggestion *Suggestion) error {
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}
	if suggestion.Status == "" {
		suggestion.Status = types.SuggestionNew
	}
	query := `
		INSERT INTO suggestions (id, text, stage, project_id, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		suggestion.ID, suggestion.Text, suggestion.Stage, suggestion.ProjectID, suggestion.Status, suggestion.UserID,
	).Scan(&suggestion.CreatedAt, &suggestion.UpdatedAt)
}

func (r *pgSuggestionRepository) FindByID(ctx context.Context, id string) (*Suggestion, error) {
	s, err := scanSuggestion(r.db.QueryRow(ctx, suggestionSelect+` WHERE s.id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	return s, err
}

func (r *pgSuggestionRepository) List(ctx context.Context, filter SuggestionFilter) ([]*Suggestion, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		conds = append(conds, "s.status = "+arg(filter.Status))
	}
	if filter.ProjectID != "" {
		conds = append(conds, "s.project_id = "+arg(filter.ProjectID))
	}
	if filter.AuthorID != "" {
		conds = append(conds, "s.user_id = "+arg(filter.AuthorID))
	}

	query := suggestionSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []*Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

func (r *pgSuggestionRepository) UpdateStatus(ctx context.Context, id string, status types.SuggestionStatus, userID *string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE suggestions SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`,
		id, status, userID)
	return err
}
