package domain

import (
	"fmt"
	"strings"
)

// StageSequence is the ordered, duplicate-free list of stages for one
// service type.
type StageSequence []Stage

// Len returns the number of stages.
func (s StageSequence) Len() int { return len(s) }

// First returns the initial stage.
func (s StageSequence) First() Stage { return s[0] }

// Last returns the terminal stage.
func (s StageSequence) Last() Stage { return s[len(s)-1] }

// Find returns the position of stage, or -1.
func (s StageSequence) Find(stage Stage) int {
	for i, st := range s {
		if st == stage {
			return i
		}
	}
	return -1
}

// ServiceDefinition is the catalog entry for a service type.
// DefaultTimelineDays is nil when there is no sane default and the
// practitioner has to set the timeline.
type ServiceDefinition struct {
	Type                ServiceType
	Label               string
	Stages              StageSequence
	DefaultTimelineDays *int
}

// Catalog is the immutable table of service types, their stage sequences
// and display labels. Build it once at start-up and share it.
type Catalog struct {
	order       []ServiceType
	defs        map[ServiceType]ServiceDefinition
	stageLabels map[Stage]string
	fallback    ServiceType
}

// NewCatalog validates defs and copies them into a read-only catalog.
func NewCatalog(defs []ServiceDefinition, stageLabels map[Stage]string) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog needs at least one service type")
	}

	c := &Catalog{
		defs:        make(map[ServiceType]ServiceDefinition, len(defs)),
		stageLabels: make(map[Stage]string, len(stageLabels)),
	}
	for stage, label := range stageLabels {
		c.stageLabels[stage] = label
	}

	for _, def := range defs {
		if _, dup := c.defs[def.Type]; dup {
			return nil, fmt.Errorf("service type %q defined twice", def.Type)
		}
		if err := validateSequence(def.Stages); err != nil {
			return nil, fmt.Errorf("service type %q: %w", def.Type, err)
		}
		if def.DefaultTimelineDays != nil && *def.DefaultTimelineDays < 0 {
			return nil, fmt.Errorf("service type %q: negative default timeline", def.Type)
		}

		stored := ServiceDefinition{
			Type:   def.Type,
			Label:  def.Label,
			Stages: append(StageSequence(nil), def.Stages...),
		}
		if def.DefaultTimelineDays != nil {
			days := *def.DefaultTimelineDays
			stored.DefaultTimelineDays = &days
		}
		c.defs[def.Type] = stored
		c.order = append(c.order, def.Type)

		// Unknown types fall back to the shortest sequence;
		// ties go to the first definition.
		if c.fallback == "" || len(def.Stages) < len(c.defs[c.fallback].Stages) {
			c.fallback = def.Type
		}
	}
	return c, nil
}

func validateSequence(seq StageSequence) error {
	if len(seq) < 2 {
		return fmt.Errorf("stage sequence needs at least two stages")
	}
	if seq.First() != StagePaymentReceived {
		return fmt.Errorf("stage sequence must start with %s", StagePaymentReceived)
	}
	if seq.Last() != StageComplete {
		return fmt.Errorf("stage sequence must end with %s", StageComplete)
	}
	seen := make(map[Stage]bool, len(seq))
	for _, st := range seq {
		if seen[st] {
			return fmt.Errorf("stage %q appears twice", st)
		}
		seen[st] = true
	}
	return nil
}

// Lookup returns the definition for st. When st is unknown it returns the
// fallback definition (the shortest sequence) and false; callers that
// accept input must treat false as a validation failure.
func (c *Catalog) Lookup(st ServiceType) (ServiceDefinition, bool) {
	def, ok := c.defs[st]
	if !ok {
		return c.copyOf(c.defs[c.fallback]), false
	}
	return c.copyOf(def), true
}

func (c *Catalog) copyOf(def ServiceDefinition) ServiceDefinition {
	def.Stages = append(StageSequence(nil), def.Stages...)
	if def.DefaultTimelineDays != nil {
		days := *def.DefaultTimelineDays
		def.DefaultTimelineDays = &days
	}
	return def
}

// Stages returns the stage sequence for st, or the fallback sequence.
func (c *Catalog) Stages(st ServiceType) StageSequence {
	def, _ := c.Lookup(st)
	return def.Stages
}

// DefaultTimelineDays returns the default day count, or nil when the
// service has none (or is unknown).
func (c *Catalog) DefaultTimelineDays(st ServiceType) *int {
	def, ok := c.Lookup(st)
	if !ok {
		return nil
	}
	return def.DefaultTimelineDays
}

// Has reports whether st is in the catalog.
func (c *Catalog) Has(st ServiceType) bool {
	_, ok := c.defs[st]
	return ok
}

// ParseServiceType validates a service type identifier from input.
func (c *Catalog) ParseServiceType(s string) (ServiceType, error) {
	st := ServiceType(strings.ToLower(strings.TrimSpace(s)))
	if !c.Has(st) {
		return "", fmt.Errorf("%w %q", ErrUnknownServiceType, s)
	}
	return st, nil
}

// ServiceTypes lists the catalog in definition order.
func (c *Catalog) ServiceTypes() []ServiceType {
	return append([]ServiceType(nil), c.order...)
}

// StageLabel returns the display label for stage, humanizing unmapped ids.
func (c *Catalog) StageLabel(stage Stage) string {
	if label, ok := c.stageLabels[stage]; ok {
		return label
	}
	return HumanizeIdentifier(string(stage))
}

// ServiceLabel returns the display label for st, humanizing unmapped ids.
func (c *Catalog) ServiceLabel(st ServiceType) string {
	if def, ok := c.defs[st]; ok && def.Label != "" {
		return def.Label
	}
	return HumanizeIdentifier(string(st))
}

func days(n int) *int { return &n }

// NewDefaultCatalog builds the practice's service offering.
func NewDefaultCatalog() (*Catalog, error) {
	return NewCatalog([]ServiceDefinition{
		{
			Type:                ServiceConsultation,
			Label:               "Consultation",
			Stages:              StageSequence{StagePaymentReceived, "scheduled", "consultation_held", "summary_delivered", StageComplete},
			DefaultTimelineDays: days(7),
		},
		{
			Type:                ServicePatentSearch,
			Label:               "Patent Search",
			Stages:              StageSequence{StagePaymentReceived, "search_in_progress", "report_drafting", "report_delivered", StageComplete},
			DefaultTimelineDays: days(14),
		},
		{
			Type:                ServicePatentDrafting,
			Label:               "Patent Drafting",
			Stages:              StageSequence{StagePaymentReceived, "intake_review", "drafting", "draft_delivered", "revisions", "final_review", StageComplete},
			DefaultTimelineDays: days(45),
		},
		{
			Type:                ServicePatentProsecution,
			Label:               "Patent Prosecution",
			Stages:              StageSequence{StagePaymentReceived, "office_action_review", "response_drafting", "response_filed", "awaiting_examiner", StageComplete},
			DefaultTimelineDays: days(30),
		},
		{
			Type:   ServiceInternationalFiling,
			Label:  "International Filing (PCT)",
			Stages: StageSequence{StagePaymentReceived, "strategy_review", "documents_prepared", "filed", "awaiting_confirmation", StageComplete},
		},
		{
			Type:                ServiceFTO,
			Label:               "Freedom to Operate",
			Stages:              StageSequence{StagePaymentReceived, "scope_definition", "analysis", "opinion_delivered", StageComplete},
			DefaultTimelineDays: days(21),
		},
		{
			Type:                ServiceIllustrations,
			Label:               "Patent Illustrations",
			Stages:              StageSequence{StagePaymentReceived, "drafting", "draft_delivered", "revisions", StageComplete},
			DefaultTimelineDays: days(10),
		},
		{
			Type:                ServiceFiling,
			Label:               "Filing",
			Stages:              StageSequence{StagePaymentReceived, "document_review", "filed", "awaiting_receipt", StageComplete},
			DefaultTimelineDays: days(5),
		},
		{
			Type:                ServiceIPValuation,
			Label:               "IP Valuation",
			Stages:              StageSequence{StagePaymentReceived, "data_collection", "valuation_analysis", "report_delivered", StageComplete},
			DefaultTimelineDays: days(21),
		},
	}, map[Stage]string{
		StagePaymentReceived:    "Payment Received",
		"scheduled":             "Consultation Scheduled",
		"consultation_held":     "Consultation Held",
		"summary_delivered":     "Summary Delivered",
		"search_in_progress":    "Search In Progress",
		"report_drafting":       "Drafting Report",
		"report_delivered":      "Report Delivered",
		"intake_review":         "Intake Review",
		"drafting":              "Drafting",
		"draft_delivered":       "Draft Delivered",
		"revisions":             "Revisions",
		"final_review":          "Final Review",
		"office_action_review":  "Reviewing Office Action",
		"response_drafting":     "Drafting Response",
		"response_filed":        "Response Filed",
		"awaiting_examiner":     "Awaiting Examiner",
		"strategy_review":       "Filing Strategy Review",
		"documents_prepared":    "Documents Prepared",
		"filed":                 "Filed",
		"awaiting_confirmation": "Awaiting Confirmation",
		"scope_definition":      "Defining Scope",
		"analysis":              "Analysis",
		"opinion_delivered":     "Opinion Delivered",
		"document_review":       "Document Review",
		"awaiting_receipt":      "Awaiting Filing Receipt",
		"data_collection":       "Data Collection",
		"valuation_analysis":    "Valuation Analysis",
		StageComplete:           "Complete",
	})
}

// MustDefaultCatalog is NewDefaultCatalog for tests and fixtures. It panics
// if the built-in definitions are invalid.
func MustDefaultCatalog() *Catalog {
	c, err := NewDefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}
