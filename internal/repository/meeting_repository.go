package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// MeetingRepository stores meetings attached to tickets.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *domain.Meeting) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Meeting, error)
}

type meetingRepository struct {
	pool *pgxpool.Pool
}

// NewMeetingRepository instantiates repository.
func NewMeetingRepository(pool *pgxpool.Pool) MeetingRepository {
	return &meetingRepository{pool: pool}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	const query = `
        INSERT INTO meetings (ticket_id, date, notes)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		meeting.TicketID,
		meeting.Date,
		meeting.Notes,
	).Scan(&meeting.ID, &meeting.CreatedAt)
}

func (r *meetingRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Meeting, error) {
	const query = `
        SELECT id, ticket_id, date, notes, created_at
        FROM meetings WHERE ticket_id=$1 ORDER BY date`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Meeting
	for rows.Next() {
		var meeting domain.Meeting
		if err := rows.Scan(
			&meeting.ID,
			&meeting.TicketID,
			&meeting.Date,
			&meeting.Notes,
			&meeting.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, meeting)
	}
	return result, rows.Err()
}
