package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
)

// ============================================
// Suggestion Service
// ============================================

type CreateSuggestionInput struct {
	Text      string  `json:"texto"`
	Stage     *string `json:"etapa"`
	ProjectID *string `json:"projetoId"`
}

type SuggestionService interface {
	Create(ctx context.Context, actor Actor, input CreateSuggestionInput) (*repository.Suggestion, error)
	List(ctx context.Context, actor Actor, filter repository.SuggestionFilter) ([]*repository.Suggestion, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, status types.SuggestionStatus) (*repository.Suggestion, error)
}

type suggestionService struct {
	store repository.Store
}

func NewSuggestionService(store repository.Store) SuggestionService {
	return &suggestionService{store: store}
}

func (s *suggestionService) Create(ctx context.Context, actor Actor, input CreateSuggestionInput) (*repository.Suggestion, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthorized
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, invalid("Texto é obrigatório")
	}

	suggestion := &repository.Suggestion{
		Text:      text,
		Stage:     trimmed(input.Stage),
		ProjectID: trimmed(input.ProjectID),
		Status:    types.SuggestionNew,
		UserID:    actor.UserID,
	}
	if suggestion.ProjectID != nil {
		project, err := s.store.Projects().FindByID(ctx, *suggestion.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, invalid("Projeto não encontrado")
		}
	}
	if err := s.store.Suggestions().Create(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}
	return suggestion, nil
}

// List shows management every suggestion; everyone else sees only their own.
func (s *suggestionService) List(ctx context.Context, actor Actor, filter repository.SuggestionFilter) ([]*repository.Suggestion, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalid("Status inválido")
	}
	if !types.HasRole(actor.Role, types.ManagementRoles...) {
		filter.AuthorID = actor.UserID
	}
	suggestions, err := s.store.Suggestions().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []*repository.Suggestion{}
	}
	return suggestions, nil
}

func (s *suggestionService) UpdateStatus(ctx context.Context, actor Actor, id string, status types.SuggestionStatus) (*repository.Suggestion, error) {
	if err := authorize(actor, types.ManagementRoles...); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("Status inválido")
	}
	suggestion, err := s.store.Suggestions().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if suggestion == nil {
		return nil, ErrNotFound
	}
	if err := s.store.Suggestions().UpdateStatus(ctx, id, status, actor.ref()); err != nil {
		return nil, fmt.Errorf("failed to update suggestion: %w", err)
	}
	suggestion.Status = status
	suggestion.UpdatedBy = actor.ref()
	return suggestion, nil
}
