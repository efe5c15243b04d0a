package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Credential holds a vault entry. EncryptedSecret never leaves the service layer.
type Credential struct {
	ID              string    `json:"id"`
	Category        string    `json:"categoria"`
	Service         string    `json:"servico"`
	Login           *string   `json:"login"`
	EncryptedSecret string    `json:"-"`
	CreatedBy       *string   `json:"createdById"`
	UpdatedBy       *string   `json:"updatedById"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type CredentialRepository interface {
	Create(ctx context.Context, credential *Credential) error
	FindByID(ctx context.Context, id string) (*Credential, error)
	List(ctx context.Context) ([]*Credential, error)
	Update(ctx context.Context, credential *Credential) error
	Delete(ctx context.Context, id string) error
}

type pgCredentialRepository struct {
	db DBTX
}

const credentialColumns = `id, category, service, login, encrypted_secret, created_by, updated_by, created_at, updated_at`

func scanCredential(row interface{ Scan(...any) error }) (*Credential, error) {
	c := &Credential{}
	err := row.Scan(&c.ID, &c.Category, &c.Service, &c.Login, &c.EncryptedSecret,
		&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCredentialRepository) Create(ctx context.Context, credential *Credential) error {
	if credential.ID == "" {
		credential.ID = uuid.NewString()
	}
	query := `
		INSERT INTO credentials (id, category, service, login, encrypted_secret, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		credential.ID, credential.Category, credential.Service, credential.Login,
		credential.EncryptedSecret, credential.CreatedBy,
	).Scan(&credential.CreatedAt, &credential.UpdatedAt)
}

func (r *pgCredentialRepository) FindByID(ctx context.Context, id string) (*Credential, error) {
	c, err := scanCredential(r.db.QueryRow(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	return c, err
}

func (r *pgCredentialRepository) List(ctx context.Context) ([]*Credential, error) {
	rows, err := r.db.Query(ctx, `SELECT `+credentialColumns+` FROM credentials ORDER BY category, service`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credentials []*Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, c)
	}
	return credentials, rows.Err()
}

func (r *pgCredentialRepository) Update(ctx context.Context, credential *Credential) error {
	query := `
		UPDATE credentials SET
			category = $2, service = $3, login = $4, encrypted_secret = $5, updated_by = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		credential.ID, credential.Category, credential.Service, credential.Login,
		credential.EncryptedSecret, credential.UpdatedBy,
	).Scan(&credential.UpdatedAt)
}

func (r *pgCredentialRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	return err
}
