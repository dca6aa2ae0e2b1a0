package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// DepartmentsHandler exposes department endpoints.
type DepartmentsHandler struct {
	departments repository.DepartmentRepository
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departments repository.DepartmentRepository) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments}
}

// List handles GET /api/dept.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, departmentResponse(&departments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /api/dept/:deptId.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	dept, err := h.departments.GetByID(c.Context(), c.Params("deptId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("department", map[string]any{"department_id": c.Params("deptId")})
		}
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// Create handles POST /api/dept.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if _, err := h.departments.GetByName(c.Context(), name); err == nil {
		return apperrors.NewConflict("department already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	dept := &domain.Department{Name: name}
	if err := h.departments.Create(c.Context(), dept); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:         dept.ID,
		Name:       dept.Name,
		TeamLeadID: dept.TeamLeadID,
		CreatedAt:  dept.CreatedAt,
	}
}
