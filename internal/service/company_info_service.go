package service

import (
	"context"
	"fmt"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
)

// CompanyInfoView is the institutional data block. ID is null until the
// first save.
type CompanyInfoView struct {
	ID        *string `json:"id"`
	CNPJ      *string `json:"cnpj"`
	Address   *string `json:"endereco"`
	Phone     *string `json:"telefone"`
	Website   *string `json:"site"`
	Instagram *string `json:"instagram"`
}

// UpdateCompanyInfoInput is a partial update; nil fields are left untouched
// and empty strings clear them.
type UpdateCompanyInfoInput struct {
	CNPJ      *string `json:"cnpj"`
	Address   *string `json:"endereco"`
	Phone     *string `json:"telefone"`
	Website   *string `json:"site"`
	Instagram *string `json:"instagram"`
}

type CompanyInfoService interface {
	Get(ctx context.Context) (*CompanyInfoView, error)
	Update(ctx context.Context, actor Actor, input UpdateCompanyInfoInput) (*CompanyInfoView, error)
}

type companyInfoService struct {
	store repository.Store
}

func NewCompanyInfoService(store repository.Store) CompanyInfoService {
	return &companyInfoService{store: store}
}

func companyInfoView(info *repository.CompanyInfo) *CompanyInfoView {
	if info == nil {
		return &CompanyInfoView{}
	}
	id := info.ID
	return &CompanyInfoView{
		ID:        &id,
		CNPJ:      info.CNPJ,
		Address:   info.Address,
		Phone:     info.Phone,
		Website:   info.Website,
		Instagram: info.Instagram,
	}
}

func (s *companyInfoService) Get(ctx context.Context) (*CompanyInfoView, error) {
	info, err := s.store.CompanyInfo().Get(ctx)
	if err != nil {
		return nil, err
	}
	return companyInfoView(info), nil
}

func (s *companyInfoService) Update(ctx context.Context, actor Actor, input UpdateCompanyInfoInput) (*CompanyInfoView, error) {
	if err := authorize(actor, types.ManagementRoles...); err != nil {
		return nil, err
	}

	var saved *repository.CompanyInfo
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		info, err := tx.CompanyInfo().Get(ctx)
		if err != nil {
			return err
		}
		if info == nil {
			info = &repository.CompanyInfo{}
		}
		if input.CNPJ != nil {
			info.CNPJ = trimmed(input.CNPJ)
		}
		if input.Address != nil {
			info.Address = trimmed(input.Address)
		}
		if input.Phone != nil {
			info.Phone = trimmed(input.Phone)
		}
		if input.Website != nil {
			info.Website = trimmed(input.Website)
		}
		if input.Instagram != nil {
			info.Instagram = trimmed(input.Instagram)
		}
		info.UpdatedBy = actor.ref()
		if err := tx.CompanyInfo().Save(ctx, info); err != nil {
			return fmt.Errorf("failed to save company info: %w", err)
		}
		saved = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return companyInfoView(saved), nil
}
