package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CompanyInfo is the single row of institutional data shown on quotes and
// the settings page.
type CompanyInfo struct {
	ID        string    `json:"id"`
	CNPJ      *string   `json:"cnpj"`
	Address   *string   `json:"endereco"`
	Phone     *string   `json:"telefone"`
	Website   *string   `json:"site"`
	Instagram *string   `json:"instagram"`
	UpdatedBy *string   `json:"updatedById"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CompanyInfoRepository interface {
	// Get returns the most recently updated row, or nil when none exists.
	Get(ctx context.Context) (*CompanyInfo, error)
	Save(ctx context.Context, info *CompanyInfo) error
}

type pgCompanyInfoRepository struct {
	db DBTX
}

func (r *pgCompanyInfoRepository) Get(ctx context.Context) (*CompanyInfo, error) {
	c := &CompanyInfo{}
	err := r.db.QueryRow(ctx, `
		SELECT id, cnpj, address, phone, website, instagram, updated_by, created_at, updated_at
		FROM company_info
		ORDER BY updated_at DESC
		LIMIT 1`,
	).Scan(&c.ID, &c.CNPJ, &c.Address, &c.Phone, &c.Website, &c.Instagram, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Save inserts the row on first use and updates it afterwards.
func (r *pgCompanyInfoRepository) Save(ctx context.Context, info *CompanyInfo) error {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO company_info (id, cnpj, address, phone, website, instagram, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			cnpj = EXCLUDED.cnpj,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			instagram = EXCLUDED.instagram,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING created_at, updated_at`,
		info.ID, info.CNPJ, info.Address, info.Phone, info.Website, info.Instagram, info.UpdatedBy,
	).Scan(&info.CreatedAt, &info.UpdatedAt)
}
