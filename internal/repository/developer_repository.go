package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// DeveloperRepository encapsulates developer persistence. Lookups load the
// department name so role derivation never needs a second query.
type DeveloperRepository interface {
	Create(ctx context.Context, dev *domain.Developer) error
	GetByID(ctx context.Context, id string) (*domain.Developer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Developer, error)
	List(ctx context.Context) ([]domain.Developer, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Developer, error)
	Count(ctx context.Context) (int64, error)
}

type developerRepository struct {
	pool *pgxpool.Pool
}

// NewDeveloperRepository instantiates repository.
func NewDeveloperRepository(pool *pgxpool.Pool) DeveloperRepository {
	return &developerRepository{pool: pool}
}

const developerColumns = `
        d.id, d.name, d.email, d.password_hash, d.department_id, dept.name,
        d.lead_of_department_id, d.created_at, d.updated_at`

const developerFrom = `
        FROM developers d
        JOIN departments dept ON dept.id = d.department_id`

func (r *developerRepository) Create(ctx context.Context, dev *domain.Developer) error {
	const query = `
        INSERT INTO developers (name, email, password_hash, department_id, lead_of_department_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dev.Name,
		dev.Email,
		dev.PasswordHash,
		dev.DepartmentID,
		dev.LeadOfDepartmentID,
	).Scan(&dev.ID, &dev.CreatedAt, &dev.UpdatedAt)
}

func (r *developerRepository) GetByID(ctx context.Context, id string) (*domain.Developer, error) {
	return r.fetchSingle(ctx, `SELECT `+developerColumns+developerFrom+` WHERE d.id=$1`, id)
}

func (r *developerRepository) GetByEmail(ctx context.Context, email string) (*domain.Developer, error) {
	return r.fetchSingle(ctx, `SELECT `+developerColumns+developerFrom+` WHERE d.email=$1`, email)
}

func (r *developerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Developer, error) {
	var dev domain.Developer
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&dev.ID,
		&dev.Name,
		&dev.Email,
		&dev.PasswordHash,
		&dev.DepartmentID,
		&dev.DepartmentName,
		&dev.LeadOfDepartmentID,
		&dev.CreatedAt,
		&dev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dev, nil
}

func (r *developerRepository) List(ctx context.Context) ([]domain.Developer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+developerColumns+developerFrom+` ORDER BY d.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDevelopers(rows)
}

func (r *developerRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Developer, error) {
	if len(ids) == 0 {
		return []domain.Developer{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+developerColumns+developerFrom+` WHERE d.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDevelopers(rows)
}

func (r *developerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM developers`).Scan(&count)
	return count, err
}

func scanDevelopers(rows pgx.Rows) ([]domain.Developer, error) {
	var result []domain.Developer
	for rows.Next() {
		var dev domain.Developer
		if err := rows.Scan(
			&dev.ID,
			&dev.Name,
			&dev.Email,
			&dev.PasswordHash,
			&dev.DepartmentID,
			&dev.DepartmentName,
			&dev.LeadOfDepartmentID,
			&dev.CreatedAt,
			&dev.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, dev)
	}
	return result, rows.Err()
}
