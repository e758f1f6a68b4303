package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/billing/domain"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) Handle(ctx context.Context, cmd commands.CreateProjectCommand) (*projects.Project, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.Project), args.Error(1)
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) FindByPaymentReference(ctx context.Context, reference string) (*projects.Project, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.Project), args.Error(1)
}

type mockGuard struct {
	mock.Mock
}

func (m *mockGuard) Acquire(ctx context.Context, reference string) bool {
	return m.Called(ctx, reference).Bool(0)
}

func (m *mockGuard) Release(ctx context.Context, reference string) {
	m.Called(ctx, reference)
}

// uniqueErr satisfies database.IsUniqueViolation through its message.
type uniqueErr struct{}

func (uniqueErr) Error() string { return "UNIQUE constraint failed: projects.payment_reference" }

func validPayment() domain.PaymentSucceeded {
	return domain.PaymentSucceeded{
		ServiceIdentifier:  "prior-art-search",
		AmountPaidMinor:    125000,
		Currency:           "USD",
		CustomerEmail:      "inventor@example.com",
		CustomerName:       "Ada Inventor",
		PaymentReferenceID: "pi_123",
	}
}

func paidProject(t *testing.T) *projects.Project {
	t.Helper()
	p, _, err := projects.NewProject(projects.NewProjectParams{
		ClientID:         uuid.New(),
		ServiceType:      projects.ServiceType("patent_search"),
		StartDate:        projects.Date(2026, time.January, 1),
		PaymentReference: "pi_123",
	}, projects.MustDefaultCatalog(), time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return p
}

func TestRecordPayment_CreatesProject(t *testing.T) {
	creator := new(mockCreator)
	lookup := new(mockLookup)
	guard := new(mockGuard)
	handler := NewRecordPaymentHandler(creator, lookup, guard, nil)
	ctx := context.Background()
	p := paidProject(t)

	lookup.On("FindByPaymentReference", ctx, "pi_123").Return(nil, projects.ErrProjectNotFound)
	guard.On("Acquire", ctx, "pi_123").Return(true)
	creator.On("Handle", ctx, mock.MatchedBy(func(cmd commands.CreateProjectCommand) bool {
		return cmd.ServiceType == "patent_search" &&
			cmd.Origin == commands.OriginPayment &&
			cmd.Actor.IsAdmin() &&
			cmd.Currency == "usd" &&
			cmd.PricePaid != nil && cmd.PricePaid.StringFixed(2) == "1250.00" &&
			cmd.ClientEmail == "inventor@example.com"
	})).Return(p, nil)

	result, err := handler.Handle(ctx, validPayment())

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, p, result.Project)
	guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	creator.AssertExpectations(t)
}

func TestRecordPayment_DuplicateReturnsExisting(t *testing.T) {
	creator := new(mockCreator)
	lookup := new(mockLookup)
	guard := new(mockGuard)
	handler := NewRecordPaymentHandler(creator, lookup, guard, nil)
	ctx := context.Background()
	p := paidProject(t)

	lookup.On("FindByPaymentReference", ctx, "pi_123").Return(p, nil)

	result, err := handler.Handle(ctx, validPayment())

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, p, result.Project)
	creator.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	guard.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
}

func TestRecordPayment_PaddedReferenceMatchesStoredProject(t *testing.T) {
	creator := new(mockCreator)
	lookup := new(mockLookup)
	guard := new(mockGuard)
	handler := NewRecordPaymentHandler(creator, lookup, guard, nil)
	ctx := context.Background()
	p := paidProject(t)

	lookup.On("FindByPaymentReference", ctx, "pi_123").Return(p, nil)

	payment := validPayment()
	payment.PaymentReferenceID = "  pi_123\n"
	result, err := handler.Handle(ctx, payment)

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, p, result.Project)
	lookup.AssertExpectations(t)
	creator.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestRecordPayment_PaddedReferenceTrimmedForGuardAndCreate(t *testing.T) {
	creator := new(mockCreator)
	lookup := new(mockLookup)
	guard := new(mockGuard)
	handler := NewRecordPaymentHandler(creator, lookup, guard, nil)
	ctx := context.Background()
	p := paidProject(t)

	lookup.On("FindByPaymentReference", ctx, "pi_123").Return(nil, projects.ErrProjectNotFound)
	guard.On("Acquire", ctx, "pi_123").Return(true)
	creator.On("Handle", ctx, mock.MatchedBy(func(cmd commands.CreateProjectCommand) bool {
		return cmd.PaymentReference == "pi_123"
	})).Return(p, nil)

	payment := validPayment()
	payment.PaymentReferenceID = " pi_123 "
	result, err := handler.Handle(ctx, payment)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	guard.AssertExpectations(t)
	creator.AssertExpectations(t)
}

func TestRecordPayment_InProgress(t *testing.T) {
	creator := new(mockCreator)
	lookup := new(mockLookup)
	guard := new(mockGuard)
	handler := NewRecordPaymentHandler(creator, lookup, guard, nil)
	ctx := context.Background()

	lookup.On("FindByPaymentReference", ctx, "pi_123").Return(nil, projects.ErrProjectNotFound)
	guard.On("Acquire", ctx, "pi_123").Return(false)

	_, err := handler.Handle(ctx, validPayment())

	assert.ErrorIs(t, err, domain.ErrPaymentInProgress)
	creator.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestRecordPayment_CreateFailureReleasesGuard(t *testing.T) {
	creator := new(mockCreator)
	lookup := new(mockLookup)
	guard := new(mockGuard)
	handler := NewRecordPaymentHandler(creator, lookup, guard, nil)
	ctx := context.Background()
	boom := errors.New("db down")

	lookup.On("FindByPaymentReference", ctx, "pi_123").Return(nil, projects.ErrProjectNotFound)
	guard.On("Acquire", ctx, "pi_123").Return(true)
	guard.On("Release", ctx, "pi_123").Return()
	creator.On("Handle", ctx, mock.Anything).Return(nil, boom)

	_, err := handler.Handle(ctx, validPayment())

	assert.ErrorIs(t, err, boom)
	guard.AssertCalled(t, "Release", ctx, "pi_123")
}

func TestRecordPayment_UniqueRaceResolvesToExisting(t *testing.T) {
	creator := new(mockCreator)
	lookup := new(mockLookup)
	handler := NewRecordPaymentHandler(creator, lookup, nil, nil)
	ctx := context.Background()
	p := paidProject(t)

	lookup.On("FindByPaymentReference", ctx, "pi_123").Return(nil, projects.ErrProjectNotFound).Once()
	creator.On("Handle", ctx, mock.Anything).Return(nil, uniqueErr{})
	lookup.On("FindByPaymentReference", ctx, "pi_123").Return(p, nil).Once()

	result, err := handler.Handle(ctx, validPayment())

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, p, result.Project)
}

func TestRecordPayment_RejectsInvalidPayload(t *testing.T) {
	handler := NewRecordPaymentHandler(new(mockCreator), new(mockLookup), nil, nil)

	payment := validPayment()
	payment.PaymentReferenceID = ""
	_, err := handler.Handle(context.Background(), payment)
	assert.True(t, projects.IsValidation(err))

	payment = validPayment()
	payment.ServiceIdentifier = "trademark-registration"
	_, err = handler.Handle(context.Background(), payment)
	assert.ErrorIs(t, err, projects.ErrUnknownServiceType)
}
