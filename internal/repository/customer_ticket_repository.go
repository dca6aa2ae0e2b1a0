package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CustomerTicketRepository encapsulates customer ticket persistence.
type CustomerTicketRepository interface {
	Create(ctx context.Context, ticket *domain.CustomerTicket) error
	GetByID(ctx context.Context, id string) (*domain.CustomerTicket, error)
	List(ctx context.Context) ([]domain.CustomerTicket, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.CustomerTicket, error)
	Update(ctx context.Context, ticket *domain.CustomerTicket) error
	Count(ctx context.Context) (int64, error)
}

type customerTicketRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerTicketRepository instantiates repository.
func NewCustomerTicketRepository(pool *pgxpool.Pool) CustomerTicketRepository {
	return &customerTicketRepository{pool: pool}
}

const customerTicketSelect = `
        SELECT ct.id, ct.title, ct.description, ct.status, ct.customer_id,
               c.email, ct.feedback, ct.created_at, ct.updated_at
        FROM customer_tickets ct
        JOIN customers c ON c.id = ct.customer_id`

func (r *customerTicketRepository) Create(ctx context.Context, ticket *domain.CustomerTicket) error {
	const query = `
        INSERT INTO customer_tickets (title, description, status, customer_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.CustomerID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *customerTicketRepository) GetByID(ctx context.Context, id string) (*domain.CustomerTicket, error) {
	var ticket domain.CustomerTicket
	if err := r.pool.QueryRow(ctx, customerTicketSelect+` WHERE ct.id=$1`, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.CustomerID,
		&ticket.CustomerEmail,
		&ticket.Feedback,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *customerTicketRepository) List(ctx context.Context) ([]domain.CustomerTicket, error) {
	rows, err := r.pool.Query(ctx, customerTicketSelect+` ORDER BY ct.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCustomerTickets(rows)
}

func (r *customerTicketRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.CustomerTicket, error) {
	rows, err := r.pool.Query(ctx, customerTicketSelect+` WHERE ct.customer_id=$1 ORDER BY ct.created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCustomerTickets(rows)
}

func (r *customerTicketRepository) Update(ctx context.Context, ticket *domain.CustomerTicket) error {
	const query = `
        UPDATE customer_tickets SET status=$1, feedback=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, ticket.Status, ticket.Feedback, ticket.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerTicketRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customer_tickets`).Scan(&count)
	return count, err
}

func scanCustomerTickets(rows pgx.Rows) ([]domain.CustomerTicket, error) {
	var result []domain.CustomerTicket
	for rows.Next() {
		var ticket domain.CustomerTicket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.CustomerID,
			&ticket.CustomerEmail,
			&ticket.Feedback,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
