package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

type customerTicketFixture struct {
	service   *CustomerTicketService
	tickets   *fakeCustomerTicketRepo
	customers *fakeCustomerRepo
	published *[]events.Event
	customer  *domain.Customer
}

func newCustomerTicketFixture(t *testing.T) *customerTicketFixture {
	t.Helper()
	tickets := newFakeCustomerTicketRepo()
	customers := newFakeCustomerRepo()

	customer := &domain.Customer{Name: "Cara", Email: "cara@example.com"}
	require.NoError(t, customers.Create(context.Background(), customer))

	dispatcher := events.NewInMemoryDispatcher()
	published := &[]events.Event{}
	for _, eventType := range []events.EventType{
		events.EventCustomerTicketStatusChanged,
		events.EventCustomerTicketFeedbackAdded,
	} {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			*published = append(*published, event)
			return nil
		})
	}

	svc := NewCustomerTicketService(CustomerTicketDependencies{
		CustomerTicketRepo: tickets,
		CustomerRepo:       customers,
		Dispatcher:         dispatcher,
	})
	return &customerTicketFixture{
		service:   svc,
		tickets:   tickets,
		customers: customers,
		published: published,
		customer:  customer,
	}
}

func TestCustomerTicketCreateAlwaysTodo(t *testing.T) {
	f := newCustomerTicketFixture(t)

	ticket, err := f.service.Create(context.Background(), f.customer.ID, "Broken export", "CSV export times out")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusTodo, ticket.Status)
	assert.Equal(t, f.customer.ID, ticket.CustomerID)
	assert.Nil(t, ticket.Feedback)
	assert.Empty(t, *f.published)
}

func TestCustomerTicketCreateValidation(t *testing.T) {
	f := newCustomerTicketFixture(t)

	_, err := f.service.Create(context.Background(), f.customer.ID, "", "desc")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = f.service.Create(context.Background(), "missing-customer", "title", "desc")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestCustomerTicketUpdateStatusOnly(t *testing.T) {
	f := newCustomerTicketFixture(t)
	ticket, err := f.service.Create(context.Background(), f.customer.ID, "Broken export", "d")
	require.NoError(t, err)

	status := domain.TicketStatusInProgress
	updated, err := f.service.UpdateBySupport(context.Background(), ticket.ID, CustomerTicketUpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, status, updated.Status)
	assert.Nil(t, updated.Feedback)

	require.Len(t, *f.published, 1)
	assert.Equal(t, events.EventCustomerTicketStatusChanged, (*f.published)[0].Type)
}

func TestCustomerTicketUpdateFeedbackOnly(t *testing.T) {
	f := newCustomerTicketFixture(t)
	ticket, err := f.service.Create(context.Background(), f.customer.ID, "Broken export", "d")
	require.NoError(t, err)

	feedback := "We shipped a fix, please retry."
	updated, err := f.service.UpdateBySupport(context.Background(), ticket.ID, CustomerTicketUpdateInput{Feedback: &feedback})
	require.NoError(t, err)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, feedback, *updated.Feedback)
	assert.Equal(t, domain.TicketStatusTodo, updated.Status)

	require.Len(t, *f.published, 1)
	assert.Equal(t, events.EventCustomerTicketFeedbackAdded, (*f.published)[0].Type)
}

func TestCustomerTicketUpdateBothFieldsPublishesBothEvents(t *testing.T) {
	f := newCustomerTicketFixture(t)
	ticket, err := f.service.Create(context.Background(), f.customer.ID, "Broken export", "d")
	require.NoError(t, err)

	status := domain.TicketStatusDone
	feedback := "Resolved."
	_, err = f.service.UpdateBySupport(context.Background(), ticket.ID, CustomerTicketUpdateInput{
		Status:   &status,
		Feedback: &feedback,
	})
	require.NoError(t, err)

	require.Len(t, *f.published, 2)
	types := []events.EventType{(*f.published)[0].Type, (*f.published)[1].Type}
	assert.Contains(t, types, events.EventCustomerTicketStatusChanged)
	assert.Contains(t, types, events.EventCustomerTicketFeedbackAdded)
}

func TestCustomerTicketUpdateValidation(t *testing.T) {
	f := newCustomerTicketFixture(t)
	ticket, err := f.service.Create(context.Background(), f.customer.ID, "Broken export", "d")
	require.NoError(t, err)

	_, err = f.service.UpdateBySupport(context.Background(), ticket.ID, CustomerTicketUpdateInput{})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	bad := domain.TicketStatus("Archived")
	_, err = f.service.UpdateBySupport(context.Background(), ticket.ID, CustomerTicketUpdateInput{Status: &bad})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	status := domain.TicketStatusDone
	_, err = f.service.UpdateBySupport(context.Background(), "missing", CustomerTicketUpdateInput{Status: &status})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	assert.Empty(t, *f.published)
}

func TestCustomerTicketListByCustomer(t *testing.T) {
	f := newCustomerTicketFixture(t)
	other := &domain.Customer{Name: "Omar", Email: "omar@example.com"}
	require.NoError(t, f.customers.Create(context.Background(), other))

	_, err := f.service.Create(context.Background(), f.customer.ID, "One", "d")
	require.NoError(t, err)
	_, err = f.service.Create(context.Background(), other.ID, "Two", "d")
	require.NoError(t, err)

	mine, err := f.service.ListByCustomer(context.Background(), f.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "One", mine[0].Title)

	all, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
