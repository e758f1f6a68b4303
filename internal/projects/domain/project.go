package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateType identifies projects in event envelopes.
const AggregateType = "Project"

// DefaultCurrency is used when a project is created without one.
const DefaultCurrency = "usd"

// Annotation is the note set that accompanies a transition or stands on
// its own. InternalNote is never shown to the owning client.
type Annotation struct {
	Note         string
	InternalNote string
	NotifyClient bool
	By           uuid.UUID
}

func (a Annotation) normalized() Annotation {
	a.Note = strings.TrimSpace(a.Note)
	a.InternalNote = strings.TrimSpace(a.InternalNote)
	return a
}

// IsEmpty reports whether neither note carries text.
func (a Annotation) IsEmpty() bool {
	n := a.normalized()
	return n.Note == "" && n.InternalNote == ""
}

// Project is a paid engagement moving through its service type's stages.
type Project struct {
	sharedDomain.BaseAggregateRoot
	clientID           uuid.UUID
	serviceType        ServiceType
	title              string
	description        string
	status             Stage
	jurisdictions      []string
	startDate          time.Time
	timelineDays       *int
	estimatedDelivery  *time.Time
	deliveryOverridden bool
	actualDelivery     *time.Time
	pricePaid          *decimal.Decimal
	currency           string
	paymentReference   string
}

// NewProjectParams are the inputs to project creation.
type NewProjectParams struct {
	ClientID             uuid.UUID
	ServiceType          ServiceType
	Title                string
	Description          string
	Jurisdictions        []string
	StartDate            time.Time
	TimelineDaysOverride *int
	InitialNote          string
	PricePaid            *decimal.Decimal
	Currency             string
	PaymentReference     string
	CreatedBy            uuid.UUID
}

// NewProject creates a project at payment_received together with its
// first audit record. The timeline is the override when given, otherwise
// the service type's default; with neither the estimate stays empty until
// an admin sets one.
func NewProject(params NewProjectParams, catalog *Catalog, now time.Time) (*Project, *ProjectUpdate, error) {
	if params.ClientID == uuid.Nil {
		return nil, nil, NewValidationError("client_id", "is required")
	}
	if !catalog.Has(params.ServiceType) {
		return nil, nil, NewValidationError("service_type", "unknown service type "+string(params.ServiceType))
	}
	if params.StartDate.IsZero() {
		return nil, nil, NewValidationError("start_date", "is required")
	}
	if params.TimelineDaysOverride != nil && *params.TimelineDaysOverride < 0 {
		return nil, nil, NewValidationError("timeline_days", "must not be negative")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = catalog.ServiceLabel(params.ServiceType)
	}
	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	p := &Project{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(sharedDomain.NewBaseEntity(now)),
		clientID:          params.ClientID,
		serviceType:       params.ServiceType,
		title:             title,
		description:       strings.TrimSpace(params.Description),
		status:            catalog.Stages(params.ServiceType).First(),
		jurisdictions:     cleanJurisdictions(params.Jurisdictions),
		startDate:         TruncateDate(params.StartDate),
		currency:          currency,
		paymentReference:  strings.TrimSpace(params.PaymentReference),
	}
	if params.PricePaid != nil {
		price := *params.PricePaid
		p.pricePaid = &price
	}

	days := params.TimelineDaysOverride
	if days == nil {
		days = catalog.DefaultTimelineDays(params.ServiceType)
	}
	if days != nil {
		p.applyTimeline(*days)
	}

	update := NewProjectUpdate(p.ID(), nil, p.status, Annotation{
		Note:         params.InitialNote,
		NotifyClient: true,
		By:           params.CreatedBy,
	}, now)

	p.AddDomainEvent(NewProjectCreated(p, now))
	return p, update, nil
}

func cleanJurisdictions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, j := range in {
		j = strings.ToUpper(strings.TrimSpace(j))
		if j == "" || seen[j] {
			continue
		}
		seen[j] = true
		out = append(out, j)
	}
	return out
}

func (p *Project) applyTimeline(days int) {
	d := days
	estimate := EstimateDelivery(p.startDate, d)
	p.timelineDays = &d
	p.estimatedDelivery = &estimate
	p.deliveryOverridden = false
}

// Advance moves the project exactly one stage forward. Reaching complete
// stamps the actual delivery date with today.
func (p *Project) Advance(wf *Workflow, a Annotation, today, now time.Time) (*ProjectUpdate, error) {
	if _, err := wf.Position(p.serviceType, p.status); err != nil {
		return nil, err
	}
	next, ok := wf.NextStage(p.serviceType, p.status)
	if !ok {
		return nil, ErrTerminalState
	}

	from := p.status
	p.status = next
	if IsComplete(next) {
		done := TruncateDate(today)
		p.actualDelivery = &done
	}
	p.Touch(now)

	update := NewProjectUpdate(p.ID(), &from, next, a, now)
	p.AddDomainEvent(NewStatusAdvanced(p, update, now))
	return update, nil
}

// Annotate records a note without a transition.
func (p *Project) Annotate(a Annotation, now time.Time) (*ProjectUpdate, error) {
	if a.IsEmpty() {
		return nil, NewValidationError("note", "is required")
	}
	from := p.status
	update := NewProjectUpdate(p.ID(), &from, p.status, a, now)
	p.Touch(now)
	p.AddDomainEvent(NewProjectAnnotated(p, update, now))
	return update, nil
}

// SetTimeline sets the day count and re-derives the estimate from the
// original start date. Nil clears both. Passing the current day count is a
// no-op, so an explicit date override survives it; any other value
// replaces the override. It reports whether anything changed.
func (p *Project) SetTimeline(days *int, now time.Time) (bool, error) {
	if days == nil {
		if p.timelineDays == nil && p.estimatedDelivery == nil {
			return false, nil
		}
		p.timelineDays = nil
		p.estimatedDelivery = nil
		p.deliveryOverridden = false
		p.Touch(now)
		return true, nil
	}
	if *days < 0 {
		return false, NewValidationError("timeline_days", "must not be negative")
	}
	if p.timelineDays != nil && *p.timelineDays == *days {
		return false, nil
	}
	p.applyTimeline(*days)
	p.Touch(now)
	return true, nil
}

// OverrideDeliveryDate replaces the derived estimate with an explicit
// date. When a has text an annotation update is appended as well.
func (p *Project) OverrideDeliveryDate(date time.Time, a *Annotation, now time.Time) (*ProjectUpdate, error) {
	if date.IsZero() {
		return nil, NewValidationError("estimated_delivery_date", "is required")
	}
	d := TruncateDate(date)
	p.estimatedDelivery = &d
	p.deliveryOverridden = true
	p.Touch(now)

	if a == nil || a.IsEmpty() {
		return nil, nil
	}
	return p.Annotate(*a, now)
}

// ApplySchedule routes a DeliverySchedule to the matching update path.
func (p *Project) ApplySchedule(s DeliverySchedule, now time.Time) (*ProjectUpdate, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch s.Mode {
	case ScheduleByDays:
		_, err := p.SetTimeline(s.Days, now)
		return nil, err
	default:
		return p.OverrideDeliveryDate(*s.Date, s.Annotation, now)
	}
}

// Accessors.

func (p *Project) ClientID() uuid.UUID      { return p.clientID }
func (p *Project) ServiceType() ServiceType { return p.serviceType }
func (p *Project) Title() string            { return p.title }
func (p *Project) Description() string      { return p.description }
func (p *Project) Status() Stage            { return p.status }
func (p *Project) StartDate() time.Time     { return p.startDate }
func (p *Project) DeliveryOverridden() bool { return p.deliveryOverridden }
func (p *Project) Currency() string         { return p.currency }
func (p *Project) PaymentReference() string { return p.paymentReference }
func (p *Project) IsComplete() bool         { return IsComplete(p.status) }

func (p *Project) Jurisdictions() []string       { return append([]string(nil), p.jurisdictions...) }
func (p *Project) TimelineDays() *int            { return copyInt(p.timelineDays) }
func (p *Project) EstimatedDelivery() *time.Time { return copyTime(p.estimatedDelivery) }
func (p *Project) ActualDelivery() *time.Time    { return copyTime(p.actualDelivery) }

// PricePaid is nil for admin-created projects.
func (p *Project) PricePaid() *decimal.Decimal {
	if p.pricePaid == nil {
		return nil
	}
	price := *p.pricePaid
	return &price
}

// ProjectSnapshot is the persisted form of a project.
type ProjectSnapshot struct {
	ID                 uuid.UUID
	ClientID           uuid.UUID
	ServiceType        ServiceType
	Title              string
	Description        string
	Status             Stage
	Jurisdictions      []string
	StartDate          time.Time
	TimelineDays       *int
	EstimatedDelivery  *time.Time
	DeliveryOverridden bool
	ActualDelivery     *time.Time
	PricePaid          *decimal.Decimal
	Currency           string
	PaymentReference   string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RehydrateProject rebuilds a project from storage without raising events.
func RehydrateProject(s ProjectSnapshot) *Project {
	return &Project{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt), s.Version),
		clientID:           s.ClientID,
		serviceType:        s.ServiceType,
		title:              s.Title,
		description:        s.Description,
		status:             s.Status,
		jurisdictions:      append([]string(nil), s.Jurisdictions...),
		startDate:          s.StartDate,
		timelineDays:       copyInt(s.TimelineDays),
		estimatedDelivery:  copyTime(s.EstimatedDelivery),
		deliveryOverridden: s.DeliveryOverridden,
		actualDelivery:     copyTime(s.ActualDelivery),
		pricePaid:          s.PricePaid,
		currency:           s.Currency,
		paymentReference:   s.PaymentReference,
	}
}

// Snapshot returns the persisted form of p.
func (p *Project) Snapshot() ProjectSnapshot {
	return ProjectSnapshot{
		ID:                 p.ID(),
		ClientID:           p.clientID,
		ServiceType:        p.serviceType,
		Title:              p.title,
		Description:        p.description,
		Status:             p.status,
		Jurisdictions:      p.Jurisdictions(),
		StartDate:          p.startDate,
		TimelineDays:       p.TimelineDays(),
		EstimatedDelivery:  p.EstimatedDelivery(),
		DeliveryOverridden: p.deliveryOverridden,
		ActualDelivery:     p.ActualDelivery(),
		PricePaid:          p.PricePaid(),
		Currency:           p.currency,
		PaymentReference:   p.paymentReference,
		Version:            p.Version(),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	t := *v
	return &t
}
