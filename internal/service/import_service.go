package service

import (
	"context"
	"errors"
	"io"

	"github.com/camarpe/camarpe-backend/internal/importer"
	"go.uber.org/zap"
)

// SheetImporter runs one spreadsheet import. *importer.Importer satisfies it.
type SheetImporter interface {
	Run(ctx context.Context, actorID string, files map[importer.Kind]io.Reader) (*importer.Stats, error)
}

type ImportService interface {
	Import(ctx context.Context, actor Actor, files map[importer.Kind]io.Reader) (*importer.Stats, error)
	Template(kind string) (string, error)
}

type importService struct {
	importer  SheetImporter
	dashboard DashboardService
	log       *zap.Logger
}

func NewImportService(im SheetImporter, dashboard DashboardService, log *zap.Logger) ImportService {
	return &importService{importer: im, dashboard: dashboard, log: log.With(zap.String("component", "import"))}
}

func (s *importService) Import(ctx context.Context, actor Actor, files map[importer.Kind]io.Reader) (*importer.Stats, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthorized
	}
	if len(files) == 0 {
		return nil, invalid("Envie ao menos uma planilha (clientes, orcamentos, producao ou financeiro)")
	}

	stats, err := s.importer.Run(ctx, actor.UserID, files)
	if err != nil {
		return nil, err
	}
	s.log.Info("import finished",
		zap.String("user_id", actor.UserID),
		zap.Int("leads_created", stats.LeadsCreated),
		zap.Int("leads_updated", stats.LeadsUpdated),
		zap.Int("projects_created", stats.ProjectsCreated),
		zap.Int("projects_updated", stats.ProjectsUpdated),
		zap.Int("payments_created", stats.PaymentsCreated),
		zap.Int("errors", len(stats.Errors)),
	)
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
	return stats, nil
}

func (s *importService) Template(kind string) (string, error) {
	header, err := importer.Template(importer.Kind(kind))
	if errors.Is(err, importer.ErrUnknownKind) {
		return "", invalid("%s", err.Error())
	}
	return header, err
}
