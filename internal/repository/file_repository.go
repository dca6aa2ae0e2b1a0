package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// FileRepository stores ticket attachments with their binary content.
// ListByTicket returns metadata only; GetByID loads the content for download.
type FileRepository interface {
	Create(ctx context.Context, file *domain.File) error
	GetByID(ctx context.Context, id string) (*domain.File, error)
	Delete(ctx context.Context, id string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.File, error)
}

type fileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository instantiates repository.
func NewFileRepository(pool *pgxpool.Pool) FileRepository {
	return &fileRepository{pool: pool}
}

func (r *fileRepository) Create(ctx context.Context, file *domain.File) error {
	const query = `
        INSERT INTO files (ticket_id, name, mime_type, size_bytes, content)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		file.TicketID,
		file.Name,
		file.MimeType,
		file.Size,
		file.Content,
	).Scan(&file.ID, &file.CreatedAt)
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*domain.File, error) {
	const query = `
        SELECT id, ticket_id, name, mime_type, size_bytes, content, created_at
        FROM files WHERE id=$1`
	var file domain.File
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.TicketID,
		&file.Name,
		&file.MimeType,
		&file.Size,
		&file.Content,
		&file.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *fileRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.File, error) {
	const query = `
        SELECT id, ticket_id, name, mime_type, size_bytes, created_at
        FROM files WHERE ticket_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.File
	for rows.Next() {
		var file domain.File
		if err := rows.Scan(
			&file.ID,
			&file.TicketID,
			&file.Name,
			&file.MimeType,
			&file.Size,
			&file.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, file)
	}
	return result, rows.Err()
}
