package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// TicketService governs the ticket lifecycle: creation, status and progress
// changes, assignment unions, files, and meetings. Every successful mutation
// publishes an event; event delivery never affects the mutation's outcome.
type TicketService struct {
	tickets     repository.TicketRepository
	developers  repository.DeveloperRepository
	departments repository.DepartmentRepository
	files       repository.FileRepository
	meetings    repository.MeetingRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	DeveloperRepo  repository.DeveloperRepository
	DepartmentRepo repository.DepartmentRepository
	FileRepo       repository.FileRepository
	MeetingRepo    repository.MeetingRepository
	Dispatcher     events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		developers:  deps.DeveloperRepo,
		departments: deps.DepartmentRepo,
		files:       deps.FileRepo,
		meetings:    deps.MeetingRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload. Assignment sets may
// be empty; ParentID must reference an existing ticket when present.
type TicketCreateInput struct {
	Title         string
	Description   string
	Status        domain.TicketStatus
	Priority      domain.TicketPriority
	Progress      int
	DueDate       time.Time
	ParentID      *string
	DepartmentIDs []string
	DeveloperIDs  []string
}

// TicketDetail is a ticket with its owned sub-resources loaded.
type TicketDetail struct {
	Ticket     *domain.Ticket
	Files      []domain.File
	Meetings   []domain.Meeting
	SubTickets []domain.Ticket
}

// Create persists a new ticket and, when developers were assigned at
// creation, publishes an assignment event for them.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if input.Status == "" {
		input.Status = domain.TicketStatusTodo
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": input.Status})
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if input.Progress < 0 || input.Progress > 100 {
		return nil, apperrors.NewValidationError("progress must be within 0..100", map[string]any{"progress": input.Progress})
	}
	if input.ParentID != nil {
		if _, err := s.tickets.GetByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("parent ticket", map[string]any{"ticket_id": *input.ParentID})
			}
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		Title:                 strings.TrimSpace(input.Title),
		Description:           strings.TrimSpace(input.Description),
		Status:                input.Status,
		Priority:              input.Priority,
		Progress:              input.Progress,
		DueDate:               input.DueDate,
		ParentID:              input.ParentID,
		AssignedDepartmentIDs: input.DepartmentIDs,
		AssignedDeveloperIDs:  input.DeveloperIDs,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	if len(input.DeveloperIDs) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Payload:  events.TicketAssignedPayload{DeveloperIDs: input.DeveloperIDs},
		})
	}
	return ticket, nil
}

// SetStatus moves the ticket to the given status. Transitions are unguarded:
// any status may follow any other, only enum membership is checked.
func (s *TicketService) SetStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, status); err != nil {
		return nil, err
	}
	ticket.Status = status
	s.publishModified(ctx, ticket.ID, map[string]any{"status": status})
	return ticket, nil
}

// SetProgress updates completion percentage, enforcing the 0..100 invariant.
func (s *TicketService) SetProgress(ctx context.Context, ticketID string, progress int) (*domain.Ticket, error) {
	if progress < 0 || progress > 100 {
		return nil, apperrors.NewValidationError("progress must be within 0..100", map[string]any{"progress": progress})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateProgress(ctx, ticket.ID, progress); err != nil {
		return nil, err
	}
	ticket.Progress = progress
	s.publishModified(ctx, ticket.ID, map[string]any{"progress": progress})
	return ticket, nil
}

// AssignDevelopers unions the given developers into the assignment set and
// notifies with the names of the developers named in this call. The set
// never shrinks.
func (s *TicketService) AssignDevelopers(ctx context.Context, ticketID string, developerIDs []string) (*domain.Ticket, error) {
	if len(developerIDs) == 0 {
		return nil, apperrors.NewValidationError("developer ids required", nil)
	}
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if err := s.tickets.AddDevelopers(ctx, ticketID, developerIDs); err != nil {
		return nil, err
	}

	developers, err := s.developers.ListByIDs(ctx, developerIDs)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(developers))
	for _, dev := range developers {
		names = append(names, dev.Name)
	}
	s.publishModified(ctx, ticketID, map[string]any{"assignedDevelopers": strings.Join(names, ", ")})

	return s.tickets.GetByID(ctx, ticketID)
}

// AssignDepartment adds a department to the ticket; re-adding is a no-op.
func (s *TicketService) AssignDepartment(ctx context.Context, ticketID, departmentID string) (*domain.Ticket, error) {
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": departmentID})
		}
		return nil, err
	}
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if err := s.tickets.AddDepartment(ctx, ticketID, departmentID); err != nil {
		return nil, err
	}
	s.publishModified(ctx, ticketID, map[string]any{"assignedDepartments": dept.Name})
	return s.tickets.GetByID(ctx, ticketID)
}

// AttachFile stores a binary attachment under the ticket.
func (s *TicketService) AttachFile(ctx context.Context, ticketID string, file domain.File) (*domain.File, error) {
	if file.Name == "" || len(file.Content) == 0 {
		return nil, apperrors.NewValidationError("file required", nil)
	}
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	file.TicketID = ticketID
	if file.MimeType == "" {
		file.MimeType = "application/octet-stream"
	}
	file.Size = int64(len(file.Content))
	if err := s.files.Create(ctx, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DownloadFile loads the stored bytes for streaming back to the caller.
func (s *TicketService) DownloadFile(ctx context.Context, ticketID, fileID string) (*domain.File, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("file", map[string]any{"file_id": fileID})
		}
		return nil, err
	}
	if file.TicketID != ticketID {
		return nil, apperrors.NewNotFound("file", map[string]any{"file_id": fileID})
	}
	return file, nil
}

// RemoveFile deletes an attachment by id.
func (s *TicketService) RemoveFile(ctx context.Context, ticketID, fileID string) error {
	if _, err := s.DownloadFile(ctx, ticketID, fileID); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, fileID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("file", map[string]any{"file_id": fileID})
		}
		return err
	}
	return nil
}

// AddMeeting appends a meeting to the ticket and notifies assignees.
func (s *TicketService) AddMeeting(ctx context.Context, ticketID string, date time.Time, notes string) (*domain.Meeting, error) {
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	meeting := &domain.Meeting{
		TicketID: ticketID,
		Date:     date,
		Notes:    notes,
	}
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, err
	}
	s.publishModified(ctx, ticketID, map[string]any{"meetings": date.Format("Mon Jan 02 2006")})
	return meeting, nil
}

// List returns all tickets without assignment sets loaded.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx)
}

// ListByDeveloper returns tickets the developer is assigned to.
func (s *TicketService) ListByDeveloper(ctx context.Context, developerID string) ([]domain.Ticket, error) {
	return s.tickets.ListByDeveloper(ctx, developerID)
}

// GetDetail loads a ticket with files, meetings, and sub-tickets.
func (s *TicketService) GetDetail(ctx context.Context, ticketID string) (*TicketDetail, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	meetings, err := s.meetings.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	subTickets, err := s.tickets.ListByParent(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{
		Ticket:     ticket,
		Files:      files,
		Meetings:   meetings,
		SubTickets: subTickets,
	}, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publishModified(ctx context.Context, ticketID string, changed map[string]any) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketModified,
		TicketID: ticketID,
		Payload:  events.TicketModifiedPayload{ChangedFields: changed},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
