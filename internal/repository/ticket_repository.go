package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Assignment writes are
// atomic set-adds on the join tables, so concurrent assigners cannot lose
// each other's updates.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByDeveloper(ctx context.Context, developerID string) ([]domain.Ticket, error)
	ListByParent(ctx context.Context, parentID string) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	AddDevelopers(ctx context.Context, id string, developerIDs []string) error
	AddDepartment(ctx context.Context, id, departmentID string) error
	Count(ctx context.Context) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketSelect = `
        SELECT id, title, description, status, priority, progress, due_date,
               parent_id, created_at, updated_at
        FROM tickets`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, progress, due_date, parent_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Progress,
		ticket.DueDate,
		ticket.ParentID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	if len(ticket.AssignedDeveloperIDs) > 0 {
		if err := r.AddDevelopers(ctx, ticket.ID, ticket.AssignedDeveloperIDs); err != nil {
			return err
		}
	}
	for _, deptID := range ticket.AssignedDepartmentIDs {
		if err := r.AddDepartment(ctx, ticket.ID, deptID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, ticketSelect+` WHERE id=$1`, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Progress,
		&ticket.DueDate,
		&ticket.ParentID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}

	developerIDs, err := r.assignedIDs(ctx,
		`SELECT developer_id FROM ticket_developers WHERE ticket_id=$1`, id)
	if err != nil {
		return nil, err
	}
	departmentIDs, err := r.assignedIDs(ctx,
		`SELECT department_id FROM ticket_departments WHERE ticket_id=$1`, id)
	if err != nil {
		return nil, err
	}
	ticket.AssignedDeveloperIDs = developerIDs
	ticket.AssignedDepartmentIDs = departmentIDs
	return &ticket, nil
}

func (r *ticketRepository) assignedIDs(ctx context.Context, query, ticketID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByDeveloper(ctx context.Context, developerID string) ([]domain.Ticket, error) {
	const query = `
        SELECT t.id, t.title, t.description, t.status, t.priority, t.progress,
               t.due_date, t.parent_id, t.created_at, t.updated_at
        FROM tickets t
        JOIN ticket_developers td ON td.ticket_id = t.id
        WHERE td.developer_id=$1
        ORDER BY t.created_at DESC`
	rows, err := r.pool.Query(ctx, query, developerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByParent(ctx context.Context, parentID string) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE parent_id=$1 ORDER BY created_at`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	return r.updateField(ctx, `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
}

func (r *ticketRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	return r.updateField(ctx, `UPDATE tickets SET progress=$1, updated_at=NOW() WHERE id=$2`, progress, id)
}

func (r *ticketRepository) updateField(ctx context.Context, query string, value any, id string) error {
	cmd, err := r.pool.Exec(ctx, query, value, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AddDevelopers unions the given developers into the assignment set. The
// ON CONFLICT clause makes the write idempotent and race-free.
func (r *ticketRepository) AddDevelopers(ctx context.Context, id string, developerIDs []string) error {
	if len(developerIDs) == 0 {
		return nil
	}
	const query = `
        INSERT INTO ticket_developers (ticket_id, developer_id)
        SELECT $1, d.id FROM developers d WHERE d.id = ANY($2)
        ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, id, developerIDs)
	return err
}

// AddDepartment adds one department to the assignment set; re-adding an
// already-assigned department is a no-op.
func (r *ticketRepository) AddDepartment(ctx context.Context, id, departmentID string) error {
	const query = `
        INSERT INTO ticket_departments (ticket_id, department_id)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, id, departmentID)
	return err
}

func (r *ticketRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count)
	return count, err
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Progress,
			&ticket.DueDate,
			&ticket.ParentID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
