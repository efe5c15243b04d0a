package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/vault"
)

// ============================================
// Credential Service
// ============================================

type CredentialInput struct {
	Category string  `json:"categoria"`
	Service  string  `json:"servico"`
	Login    *string `json:"login"`
	Secret   string  `json:"senha"`
}

type UpdateCredentialInput struct {
	Category *string `json:"categoria"`
	Service  *string `json:"servico"`
	Login    *string `json:"login"`
	Secret   *string `json:"senha"`
}

// CredentialView is a credential as returned to clients. Secret holds
// vault.Masked everywhere except Reveal, where it is the plaintext or nil
// when the stored value cannot be decrypted.
type CredentialView struct {
	*repository.Credential
	Secret *string `json:"senha"`
}

type CredentialService interface {
	List(ctx context.Context) ([]*CredentialView, error)
	Create(ctx context.Context, actor Actor, input CredentialInput) (*CredentialView, error)
	Update(ctx context.Context, actor Actor, id string, input UpdateCredentialInput) (*CredentialView, error)
	Reveal(ctx context.Context, id string) (*CredentialView, error)
	Delete(ctx context.Context, id string) error
}

type credentialService struct {
	store  repository.Store
	cipher *vault.Cipher
}

func NewCredentialService(store repository.Store, cipher *vault.Cipher) CredentialService {
	return &credentialService{store: store, cipher: cipher}
}

func masked(c *repository.Credential) *CredentialView {
	secret := vault.Masked
	return &CredentialView{Credential: c, Secret: &secret}
}

func (s *credentialService) encrypt(secret string) (string, error) {
	if s.cipher == nil {
		return "", fmt.Errorf("%w: %v", ErrNotConfigured, vault.ErrKeyNotConfigured)
	}
	return s.cipher.Encrypt(secret)
}

func (s *credentialService) List(ctx context.Context) ([]*CredentialView, error) {
	credentials, err := s.store.Credentials().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*CredentialView, 0, len(credentials))
	for _, c := range credentials {
		out = append(out, masked(c))
	}
	return out, nil
}

func (s *credentialService) Create(ctx context.Context, actor Actor, input CredentialInput) (*CredentialView, error) {
	category := strings.TrimSpace(input.Category)
	svc := strings.TrimSpace(input.Service)
	switch {
	case category == "":
		return nil, invalid("Categoria é obrigatória")
	case svc == "":
		return nil, invalid("Serviço é obrigatório")
	case input.Secret == "":
		return nil, invalid("Senha é obrigatória")
	}

	sealed, err := s.encrypt(input.Secret)
	if err != nil {
		return nil, err
	}
	credential := &repository.Credential{
		Category:        category,
		Service:         svc,
		Login:           trimmed(input.Login),
		EncryptedSecret: sealed,
		CreatedBy:       actor.ref(),
	}
	if err := s.store.Credentials().Create(ctx, credential); err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}
	return masked(credential), nil
}

func (s *credentialService) find(ctx context.Context, id string) (*repository.Credential, error) {
	credential, err := s.store.Credentials().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, ErrNotFound
	}
	return credential, nil
}

func (s *credentialService) Update(ctx context.Context, actor Actor, id string, input UpdateCredentialInput) (*CredentialView, error) {
	credential, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Category != nil {
		if credential.Category = strings.TrimSpace(*input.Category); credential.Category == "" {
			return nil, invalid("Categoria é obrigatória")
		}
	}
	if input.Service != nil {
		if credential.Service = strings.TrimSpace(*input.Service); credential.Service == "" {
			return nil, invalid("Serviço é obrigatório")
		}
	}
	if input.Login != nil {
		credential.Login = trimmed(input.Login)
	}
	if input.Secret != nil && *input.Secret != "" {
		if credential.EncryptedSecret, err = s.encrypt(*input.Secret); err != nil {
			return nil, err
		}
	}
	credential.UpdatedBy = actor.ref()
	if err := s.store.Credentials().Update(ctx, credential); err != nil {
		return nil, fmt.Errorf("failed to update credential: %w", err)
	}
	return masked(credential), nil
}

func (s *credentialService) Reveal(ctx context.Context, id string) (*CredentialView, error) {
	if s.cipher == nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, vault.ErrKeyNotConfigured)
	}
	credential, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &CredentialView{Credential: credential}
	if plain, err := s.cipher.Decrypt(credential.EncryptedSecret); err == nil {
		view.Secret = &plain
	}
	return view, nil
}

func (s *credentialService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.store.Credentials().Delete(ctx, id)
}
