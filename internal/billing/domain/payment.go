// Package domain holds the inbound payment model.
package domain

import (
	"errors"
	"fmt"
	"strings"

	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/shopspring/decimal"
)

// ErrPaymentInProgress means another delivery of the same payment is being
// processed right now. The sender should retry later.
var ErrPaymentInProgress = errors.New("payment is already being processed")

// PaymentSucceeded is the normalized checkout success event.
type PaymentSucceeded struct {
	ServiceIdentifier  string `json:"service_identifier"`
	AmountPaidMinor    int64  `json:"amount_paid_minor"`
	Currency           string `json:"currency"`
	CustomerEmail      string `json:"customer_email"`
	CustomerName       string `json:"customer_name"`
	PaymentReferenceID string `json:"payment_reference_id"`
}

// Validate checks the fields needed to open a project.
func (p PaymentSucceeded) Validate() error {
	if strings.TrimSpace(p.PaymentReferenceID) == "" {
		return projects.NewValidationError("payment_reference_id", "is required")
	}
	if strings.TrimSpace(p.CustomerEmail) == "" {
		return projects.NewValidationError("customer_email", "is required")
	}
	if p.AmountPaidMinor < 0 {
		return projects.NewValidationError("amount_paid_minor", "must not be negative")
	}
	return nil
}

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true,
	"mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true,
	"xof": true, "xpf": true,
}

// NormalizeCurrency lowercases a currency code, defaulting to usd.
func NormalizeCurrency(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return projects.DefaultCurrency
	}
	return code
}

// AmountPaid converts minor units into an exact decimal amount.
func (p PaymentSucceeded) AmountPaid() decimal.Decimal {
	if zeroDecimalCurrencies[NormalizeCurrency(p.Currency)] {
		return decimal.NewFromInt(p.AmountPaidMinor)
	}
	return decimal.New(p.AmountPaidMinor, -2)
}

// serviceIdentifiers maps checkout product identifiers to service types.
var serviceIdentifiers = map[string]projects.ServiceType{
	"consultation":            projects.ServiceConsultation,
	"strategy-call":           projects.ServiceConsultation,
	"patent-search":           projects.ServicePatentSearch,
	"prior-art-search":        projects.ServicePatentSearch,
	"patentability-search":    projects.ServicePatentSearch,
	"patent-drafting":         projects.ServicePatentDrafting,
	"provisional-drafting":    projects.ServicePatentDrafting,
	"nonprovisional-drafting": projects.ServicePatentDrafting,
	"office-action-response":  projects.ServicePatentProsecution,
	"patent-prosecution":      projects.ServicePatentProsecution,
	"pct-filing":              projects.ServiceInternationalFiling,
	"international-filing":    projects.ServiceInternationalFiling,
	"freedom-to-operate":      projects.ServiceFTO,
	"fto":                     projects.ServiceFTO,
	"fto-opinion":             projects.ServiceFTO,
	"patent-illustrations":    projects.ServiceIllustrations,
	"illustrations":           projects.ServiceIllustrations,
	"patent-drawings":         projects.ServiceIllustrations,
	"filing":                  projects.ServiceFiling,
	"uspto-filing":            projects.ServiceFiling,
	"ip-valuation":            projects.ServiceIPValuation,
}

// ServiceTypeFor resolves a checkout identifier. Catalog ids such as
// "patent_search" are accepted as well.
func ServiceTypeFor(identifier string) (projects.ServiceType, error) {
	id := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(identifier)), "_", "-")
	if st, ok := serviceIdentifiers[id]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w %q", projects.ErrUnknownServiceType, identifier)
}
