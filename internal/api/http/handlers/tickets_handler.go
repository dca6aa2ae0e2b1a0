package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// TicketsHandler manages internal ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// List handles GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return apperrors.NewValidationError("invalid due_date", map[string]any{"due_date": req.DueDate})
	}

	ticket, err := h.service.Create(c.Context(), service.TicketCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		Progress:      req.Progress,
		DueDate:       dueDate,
		ParentID:      req.ParentID,
		DepartmentIDs: req.DepartmentIDs,
		DeveloperIDs:  req.DeveloperIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Get handles GET /api/tickets/:ticketId.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.GetDetail(c.Context(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetailResponse(detail)})
}

// SetStatus handles POST /api/tickets/:ticketId/status.
func (h *TicketsHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.SetStatus(c.Context(), c.Params("ticketId"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// SetProgress handles PUT /api/tickets/:ticketId/progress.
func (h *TicketsHandler) SetProgress(c *fiber.Ctx) error {
	var req dto.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.SetProgress(c.Context(), c.Params("ticketId"), req.Progress)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AssignDevelopers handles PUT /api/tickets/:ticketId/dev.
func (h *TicketsHandler) AssignDevelopers(c *fiber.Ctx) error {
	var req dto.AssignDevelopersRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.AssignDevelopers(c.Context(), c.Params("ticketId"), req.DeveloperIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AssignDepartment handles PUT /api/tickets/:ticketId/dept.
func (h *TicketsHandler) AssignDepartment(c *fiber.Ctx) error {
	var req dto.AssignDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DepartmentID == "" {
		return apperrors.NewValidationError("department_id required", nil)
	}
	ticket, err := h.service.AssignDepartment(c.Context(), c.Params("ticketId"), req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UploadFile handles POST /api/tickets/:ticketId/files with multipart form
// field "file".
func (h *TicketsHandler) UploadFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", nil)
	}
	src, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable file", nil)
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	file, err := h.service.AttachFile(c.Context(), c.Params("ticketId"), domain.File{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fileResponse(file)})
}

// DownloadFile handles GET /api/tickets/:ticketId/files?fileId= streaming the
// stored bytes as an attachment.
func (h *TicketsHandler) DownloadFile(c *fiber.Ctx) error {
	fileID := c.Query("fileId")
	if fileID == "" {
		return apperrors.NewValidationError("fileId required", nil)
	}
	file, err := h.service.DownloadFile(c.Context(), c.Params("ticketId"), fileID)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Content)
}

// DeleteFile handles DELETE /api/tickets/:ticketId/files?fileId=.
func (h *TicketsHandler) DeleteFile(c *fiber.Ctx) error {
	fileID := c.Query("fileId")
	if fileID == "" {
		return apperrors.NewValidationError("fileId required", nil)
	}
	if err := h.service.RemoveFile(c.Context(), c.Params("ticketId"), fileID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListMeetings handles GET /api/tickets/:ticketId/meetings.
func (h *TicketsHandler) ListMeetings(c *fiber.Ctx) error {
	detail, err := h.service.GetDetail(c.Context(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	items := make([]dto.MeetingResponse, 0, len(detail.Meetings))
	for i := range detail.Meetings {
		items = append(items, meetingResponse(&detail.Meetings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddMeeting handles POST /api/tickets/:ticketId/meetings.
func (h *TicketsHandler) AddMeeting(c *fiber.Ctx) error {
	var req dto.CreateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := parseDate(req.Date)
	if err != nil || date.IsZero() {
		return apperrors.NewValidationError("invalid date", map[string]any{"date": req.Date})
	}
	meeting, err := h.service.AddMeeting(c.Context(), c.Params("ticketId"), date, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": meetingResponse(meeting)})
}

// parseDate accepts RFC3339 timestamps and bare dates. Empty input yields the
// zero time without error.
func parseDate(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", val)
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:                    ticket.ID,
		Title:                 ticket.Title,
		Description:           ticket.Description,
		Status:                ticket.Status,
		Priority:              ticket.Priority,
		Progress:              ticket.Progress,
		DueDate:               ticket.DueDate,
		ParentID:              ticket.ParentID,
		AssignedDepartmentIDs: ticket.AssignedDepartmentIDs,
		AssignedDeveloperIDs:  ticket.AssignedDeveloperIDs,
		CreatedAt:             ticket.CreatedAt,
		UpdatedAt:             ticket.UpdatedAt,
	}
}

func ticketDetailResponse(detail *service.TicketDetail) dto.TicketDetailResponse {
	files := make([]dto.FileResponse, 0, len(detail.Files))
	for i := range detail.Files {
		files = append(files, fileResponse(&detail.Files[i]))
	}
	meetings := make([]dto.MeetingResponse, 0, len(detail.Meetings))
	for i := range detail.Meetings {
		meetings = append(meetings, meetingResponse(&detail.Meetings[i]))
	}
	subTickets := make([]dto.TicketResponse, 0, len(detail.SubTickets))
	for i := range detail.SubTickets {
		subTickets = append(subTickets, ticketResponse(&detail.SubTickets[i]))
	}
	return dto.TicketDetailResponse{
		TicketResponse: ticketResponse(detail.Ticket),
		Files:          files,
		Meetings:       meetings,
		SubTickets:     subTickets,
	}
}

func fileResponse(file *domain.File) dto.FileResponse {
	return dto.FileResponse{
		ID:        file.ID,
		Name:      file.Name,
		MimeType:  file.MimeType,
		Size:      file.Size,
		CreatedAt: file.CreatedAt,
	}
}

func meetingResponse(meeting *domain.Meeting) dto.MeetingResponse {
	return dto.MeetingResponse{
		ID:        meeting.ID,
		Date:      meeting.Date,
		Notes:     meeting.Notes,
		CreatedAt: meeting.CreatedAt,
	}
}
