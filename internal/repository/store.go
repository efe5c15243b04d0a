// internal/repository/store.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so every repository can run
// either directly on the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the unit of work over the write-side repositories.
type Store interface {
	Users() UserRepository
	Leads() LeadRepository
	Projects() ProjectRepository
	Payments() PaymentRepository
	CashEntries() CashEntryRepository
	StockItems() StockItemRepository
	Suggestions() SuggestionRepository
	Credentials() CredentialRepository
	Contacts() ContactRepository
	CompanyInfo() CompanyInfoRepository
	PasswordResets() PasswordResetRepository

	// WithTx runs fn with a Store bound to one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise. Calling WithTx on
	// a Store that is already transactional reuses the open transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   DBTX
	inTx bool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository             { return &pgUserRepository{db: s.db} }
func (s *pgStore) Leads() LeadRepository             { return &pgLeadRepository{db: s.db} }
func (s *pgStore) Projects() ProjectRepository       { return &pgProjectRepository{db: s.db} }
func (s *pgStore) Payments() PaymentRepository       { return &pgPaymentRepository{db: s.db} }
func (s *pgStore) CashEntries() CashEntryRepository  { return &pgCashEntryRepository{db: s.db} }
func (s *pgStore) StockItems() StockItemRepository   { return &pgStockItemRepository{db: s.db} }
func (s *pgStore) Suggestions() SuggestionRepository { return &pgSuggestionRepository{db: s.db} }
func (s *pgStore) Credentials() CredentialRepository { return &pgCredentialRepository{db: s.db} }
func (s *pgStore) Contacts() ContactRepository       { return &pgContactRepository{db: s.db} }
func (s *pgStore) CompanyInfo() CompanyInfoRepository {
	return &pgCompanyInfoRepository{db: s.db}
}
func (s *pgStore) PasswordResets() PasswordResetRepository {
	return &pgPasswordResetRepository{db: s.db}
}

func (s *pgStore) WithTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&pgStore{pool: s.pool, db: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Repositories groups the write-side store and the read-side aggregates.
type Repositories struct {
	Store     Store
	Dashboard DashboardRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sqlx.DB) *Repositories {
	return &Repositories{
		Store:     NewStore(pool),
		Dashboard: NewDashboardRepository(db),
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
