package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// User Service
// ============================================

type CreateUserInput struct {
	Name     string     `json:"nome"`
	Email    string     `json:"email"`
	Password string     `json:"senha"`
	Role     types.Role `json:"role"`
}

type UpdateUserInput struct {
	Name   *string     `json:"nome"`
	Role   *types.Role `json:"role"`
	Active *bool       `json:"ativo"`
}

type UserService interface {
	List(ctx context.Context) ([]*repository.User, error)
	GetByID(ctx context.Context, id string) (*repository.User, error)
	Create(ctx context.Context, input CreateUserInput) (*repository.User, error)
	Update(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*repository.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context) ([]*repository.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) GetByID(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*repository.User, error) {
	name := strings.TrimSpace(input.Name)
	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	switch {
	case name == "":
		return nil, invalid("Nome é obrigatório")
	case !validEmail(emailAddr):
		return nil, invalid("E-mail inválido")
	case len(input.Password) < 6:
		return nil, invalid("A senha deve ter pelo menos 6 caracteres")
	case !input.Role.IsValid():
		return nil, invalid("Perfil inválido")
	}

	existing, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &repository.User{
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hash),
		Role:         input.Role,
		Active:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*repository.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalid("Nome é obrigatório")
		}
		user.Name = name
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, invalid("Perfil inválido")
		}
		if id == actor.UserID && *input.Role != user.Role {
			return nil, invalid("Você não pode alterar o próprio perfil")
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		if id == actor.UserID && !*input.Active {
			return nil, invalid("Você não pode desativar o próprio usuário")
		}
		user.Active = *input.Active
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
