package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CustomerRepository encapsulates customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Count(ctx context.Context) (int64, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, email, password_hash)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		customer.Name,
		customer.Email,
		customer.PasswordHash,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.fetchSingle(ctx, `id=$1`, id)
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.fetchSingle(ctx, `email=$1`, email)
}

func (r *customerRepository) fetchSingle(ctx context.Context, clause string, arg any) (*domain.Customer, error) {
	query := `
        SELECT id, name, email, password_hash, created_at, updated_at
        FROM customers WHERE ` + clause
	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.PasswordHash,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	return count, err
}
