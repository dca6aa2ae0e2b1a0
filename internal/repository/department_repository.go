package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// DepartmentRepository encapsulates department persistence. GetByName serves
// signup, which connects developers to departments by name.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	Count(ctx context.Context) (int64, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository instantiates repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

// The team lead is the developer whose lead_of_department_id points back at
// the department.
const departmentSelect = `
        SELECT d.id, d.name, l.id, d.created_at, d.updated_at
        FROM departments d
        LEFT JOIN developers l ON l.lead_of_department_id = d.id`

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name)
        VALUES ($1)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, dept.Name).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	return r.fetchSingle(ctx, departmentSelect+` WHERE d.id=$1`, id)
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	return r.fetchSingle(ctx, departmentSelect+` WHERE d.name=$1`, name)
}

func (r *departmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Department, error) {
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&dept.ID,
		&dept.Name,
		&dept.TeamLeadID,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.pool.Query(ctx, departmentSelect+` ORDER BY d.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(
			&dept.ID,
			&dept.Name,
			&dept.TeamLeadID,
			&dept.CreatedAt,
			&dept.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&count)
	return count, err
}
