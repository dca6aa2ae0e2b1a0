package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// In-memory repository fakes. They mirror the SQL layer's contract closely
// enough for service tests: missing rows return pgx.ErrNoRows and assignment
// writes behave as idempotent set-adds.

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	seq     int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("ticket-%d", r.seq)
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	stored.AssignedDeveloperIDs = unionStrings(nil, ticket.AssignedDeveloperIDs)
	stored.AssignedDepartmentIDs = unionStrings(nil, ticket.AssignedDepartmentIDs)
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	copied.AssignedDeveloperIDs = append([]string(nil), ticket.AssignedDeveloperIDs...)
	copied.AssignedDepartmentIDs = append([]string(nil), ticket.AssignedDepartmentIDs...)
	return &copied, nil
}

func (r *fakeTicketRepo) List(_ context.Context) ([]domain.Ticket, error) {
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListByDeveloper(_ context.Context, developerID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		for _, id := range ticket.AssignedDeveloperIDs {
			if id == developerID {
				out = append(out, *ticket)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListByParent(_ context.Context, parentID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.ParentID != nil && *ticket.ParentID == parentID {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	return nil
}

func (r *fakeTicketRepo) UpdateProgress(_ context.Context, id string, progress int) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Progress = progress
	return nil
}

func (r *fakeTicketRepo) AddDevelopers(_ context.Context, id string, developerIDs []string) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AssignedDeveloperIDs = unionStrings(ticket.AssignedDeveloperIDs, developerIDs)
	return nil
}

func (r *fakeTicketRepo) AddDepartment(_ context.Context, id, departmentID string) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AssignedDepartmentIDs = unionStrings(ticket.AssignedDepartmentIDs, []string{departmentID})
	return nil
}

func (r *fakeTicketRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.tickets)), nil
}

func unionStrings(existing, added []string) []string {
	seen := map[string]struct{}{}
	out := append([]string(nil), existing...)
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range added {
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

type fakeDeveloperRepo struct {
	developers map[string]*domain.Developer
	seq        int
}

func newFakeDeveloperRepo() *fakeDeveloperRepo {
	return &fakeDeveloperRepo{developers: map[string]*domain.Developer{}}
}

func (r *fakeDeveloperRepo) Create(_ context.Context, dev *domain.Developer) error {
	r.seq++
	dev.ID = fmt.Sprintf("dev-%d", r.seq)
	stored := *dev
	r.developers[dev.ID] = &stored
	return nil
}

func (r *fakeDeveloperRepo) GetByID(_ context.Context, id string) (*domain.Developer, error) {
	dev, ok := r.developers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *dev
	return &copied, nil
}

func (r *fakeDeveloperRepo) GetByEmail(_ context.Context, email string) (*domain.Developer, error) {
	for _, dev := range r.developers {
		if dev.Email == email {
			copied := *dev
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDeveloperRepo) List(_ context.Context) ([]domain.Developer, error) {
	out := make([]domain.Developer, 0, len(r.developers))
	for _, dev := range r.developers {
		out = append(out, *dev)
	}
	return out, nil
}

func (r *fakeDeveloperRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Developer, error) {
	var out []domain.Developer
	for _, id := range ids {
		if dev, ok := r.developers[id]; ok {
			out = append(out, *dev)
		}
	}
	return out, nil
}

func (r *fakeDeveloperRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.developers)), nil
}

type fakeCustomerRepo struct {
	customers map[string]*domain.Customer
	seq       int
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[string]*domain.Customer{}}
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	r.seq++
	customer.ID = fmt.Sprintf("cust-%d", r.seq)
	stored := *customer
	r.customers[customer.ID] = &stored
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *customer
	return &copied, nil
}

func (r *fakeCustomerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, customer := range r.customers {
		if customer.Email == email {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCustomerRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.customers)), nil
}

type fakeDepartmentRepo struct {
	departments map[string]*domain.Department
	seq         int
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: map[string]*domain.Department{}}
}

func (r *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.seq++
	dept.ID = fmt.Sprintf("dept-%d", r.seq)
	stored := *dept
	r.departments[dept.ID] = &stored
	return nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := r.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *dept
	return &copied, nil
}

func (r *fakeDepartmentRepo) GetByName(_ context.Context, name string) (*domain.Department, error) {
	for _, dept := range r.departments {
		if dept.Name == name {
			copied := *dept
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	out := make([]domain.Department, 0, len(r.departments))
	for _, dept := range r.departments {
		out = append(out, *dept)
	}
	return out, nil
}

func (r *fakeDepartmentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.departments)), nil
}

type fakeCustomerTicketRepo struct {
	tickets map[string]*domain.CustomerTicket
	seq     int
}

func newFakeCustomerTicketRepo() *fakeCustomerTicketRepo {
	return &fakeCustomerTicketRepo{tickets: map[string]*domain.CustomerTicket{}}
}

func (r *fakeCustomerTicketRepo) Create(_ context.Context, ticket *domain.CustomerTicket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("ct-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeCustomerTicketRepo) GetByID(_ context.Context, id string) (*domain.CustomerTicket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeCustomerTicketRepo) List(_ context.Context) ([]domain.CustomerTicket, error) {
	out := make([]domain.CustomerTicket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeCustomerTicketRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.CustomerTicket, error) {
	var out []domain.CustomerTicket
	for _, ticket := range r.tickets {
		if ticket.CustomerID == customerID {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *fakeCustomerTicketRepo) Update(_ context.Context, ticket *domain.CustomerTicket) error {
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = ticket.Status
	stored.Feedback = ticket.Feedback
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeCustomerTicketRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.tickets)), nil
}

type fakeFileRepo struct {
	files map[string]*domain.File
	seq   int
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[string]*domain.File{}}
}

func (r *fakeFileRepo) Create(_ context.Context, file *domain.File) error {
	r.seq++
	file.ID = fmt.Sprintf("file-%d", r.seq)
	file.CreatedAt = time.Now()
	stored := *file
	r.files[file.ID] = &stored
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id string) (*domain.File, error) {
	file, ok := r.files[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *file
	return &copied, nil
}

func (r *fakeFileRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.files[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.files, id)
	return nil
}

func (r *fakeFileRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.File, error) {
	var out []domain.File
	for _, file := range r.files {
		if file.TicketID == ticketID {
			meta := *file
			meta.Content = nil
			out = append(out, meta)
		}
	}
	return out, nil
}

type fakeMeetingRepo struct {
	meetings map[string]*domain.Meeting
	seq      int
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: map[string]*domain.Meeting{}}
}

func (r *fakeMeetingRepo) Create(_ context.Context, meeting *domain.Meeting) error {
	r.seq++
	meeting.ID = fmt.Sprintf("meeting-%d", r.seq)
	meeting.CreatedAt = time.Now()
	stored := *meeting
	r.meetings[meeting.ID] = &stored
	return nil
}

func (r *fakeMeetingRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Meeting, error) {
	var out []domain.Meeting
	for _, meeting := range r.meetings {
		if meeting.TicketID == ticketID {
			out = append(out, *meeting)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	revoked map[string]time.Time
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{revoked: map[string]time.Time{}}
}

func (r *fakeSessionRepo) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.revoked[tokenID] = until
	return nil
}

func (r *fakeSessionRepo) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	until, ok := r.revoked[tokenID]
	return ok && time.Now().Before(until), nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records sends; when failWith is set every send fails.
type fakeMailer struct {
	sent     []sentMail
	failWith error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
