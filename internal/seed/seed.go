package seed

import (
	"context"
	"fmt"

	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/camarpe/camarpe-backend/internal/types"
	"go.uber.org/zap"
)

const devPassword = "camarpe123"

var devUsers = []service.CreateUserInput{
	{Name: "Administrador", Email: "admin@camarpe.com.br", Role: types.RoleAdmin},
	{Name: "Gestão", Email: "gestao@camarpe.com.br", Role: types.RoleGestao},
	{Name: "Comercial", Email: "comercial@camarpe.com.br", Role: types.RoleComercial},
	{Name: "Produção", Email: "producao@camarpe.com.br", Role: types.RoleProducao},
}

// SeedData creates one user per role when the user table is empty.
func SeedData(ctx context.Context, users service.UserService, log *zap.Logger) error {
	existing, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(existing) > 0 {
		log.Debug("seed skipped, users already exist", zap.Int("users", len(existing)))
		return nil
	}

	for _, input := range devUsers {
		input.Password = devPassword
		if _, err := users.Create(ctx, input); err != nil {
			return fmt.Errorf("failed to seed %s: %w", input.Email, err)
		}
	}
	log.Info("seeded development users", zap.Int("users", len(devUsers)), zap.String("password", devPassword))
	return nil
}
