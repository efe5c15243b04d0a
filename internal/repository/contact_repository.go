package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Phone     string    `json:"telefone"`
	CreatedBy *string   `json:"createdById"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContactRepository interface {
	Create(ctx context.Context, contact *Contact) error
	FindByID(ctx context.Context, id string) (*Contact, error)
	List(ctx context.Context, search string) ([]*Contact, error)
	Delete(ctx context.Context, id string) error
}

type pgContactRepository struct {
	db DBTX
}

func (r *pgContactRepository) Create(ctx context.Context, contact *Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO contacts (id, name, phone, created_by) VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		contact.ID, contact.Name, contact.Phone, contact.CreatedBy,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)
}

func (r *pgContactRepository) FindByID(ctx context.Context, id string) (*Contact, error) {
	c := &Contact{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, phone, created_by, created_at, updated_at FROM contacts WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgContactRepository) List(ctx context.Context, search string) ([]*Contact, error) {
	query := `SELECT id, name, phone, created_by, created_at, updated_at FROM contacts`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		query += ` WHERE name ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+s+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		c := &Contact{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *pgContactRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	return err
}
