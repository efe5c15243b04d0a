package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/camarpe/camarpe-backend/internal/repository"
)

type CreateContactInput struct {
	Name  string `json:"nome"`
	Phone string `json:"telefone"`
}

type ContactService interface {
	List(ctx context.Context, search string) ([]*repository.Contact, error)
	Create(ctx context.Context, actor Actor, input CreateContactInput) (*repository.Contact, error)
	Delete(ctx context.Context, id string) error
}

type contactService struct {
	store repository.Store
}

func NewContactService(store repository.Store) ContactService {
	return &contactService{store: store}
}

func (s *contactService) List(ctx context.Context, search string) ([]*repository.Contact, error) {
	contacts, err := s.store.Contacts().List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []*repository.Contact{}
	}
	return contacts, nil
}

func (s *contactService) Create(ctx context.Context, actor Actor, input CreateContactInput) (*repository.Contact, error) {
	contact := &repository.Contact{
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		CreatedBy: actor.ref(),
	}
	if contact.Name == "" || contact.Phone == "" {
		return nil, invalid("Nome e telefone são obrigatórios")
	}
	if err := s.store.Contacts().Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, id string) error {
	contact, err := s.store.Contacts().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if contact == nil {
		return ErrNotFound
	}
	return s.store.Contacts().Delete(ctx, id)
}
