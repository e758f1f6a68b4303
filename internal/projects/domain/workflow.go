package domain

import (
	"fmt"
	"strings"
)

// Workflow answers questions about where a project sits in its service
// type's stage sequence. It is pure and safe for concurrent use.
type Workflow struct {
	catalog *Catalog
}

// NewWorkflow binds a workflow to a catalog.
func NewWorkflow(catalog *Catalog) *Workflow {
	return &Workflow{catalog: catalog}
}

// Catalog returns the catalog the workflow reads.
func (w *Workflow) Catalog() *Catalog {
	return w.catalog
}

// IndexOf returns the 0-based position of status. An unknown status reports
// 0 so read-side displays degrade to "just started" rather than failing.
func (w *Workflow) IndexOf(st ServiceType, status Stage) int {
	if i := w.catalog.Stages(st).Find(status); i >= 0 {
		return i
	}
	return 0
}

// Position is the strict form of IndexOf used before any transition.
func (w *Workflow) Position(st ServiceType, status Stage) (int, error) {
	i := w.catalog.Stages(st).Find(status)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q for %s", ErrUnknownStage, status, st)
	}
	return i, nil
}

// ProgressPercent is index/(len-1)*100 rounded half up, 0 for an unknown
// status and 100 at the final stage.
func (w *Workflow) ProgressPercent(st ServiceType, status Stage) int {
	seq := w.catalog.Stages(st)
	i := seq.Find(status)
	if i < 0 {
		return 0
	}
	gaps := seq.Len() - 1
	// (2*i*100 + gaps) / (2*gaps) == floor(i*100/gaps + 0.5) in integers.
	return (2*i*100 + gaps) / (2 * gaps)
}

// NextStage returns the stage after status. It is false at the final stage
// and for an unknown status; advancing never skips.
func (w *Workflow) NextStage(st ServiceType, status Stage) (Stage, bool) {
	seq := w.catalog.Stages(st)
	i := seq.Find(status)
	if i < 0 || i == seq.Len()-1 {
		return "", false
	}
	return seq[i+1], true
}

// PreviousStage returns the stage before status. It is false at the first
// stage and for an unknown status.
func (w *Workflow) PreviousStage(st ServiceType, status Stage) (Stage, bool) {
	seq := w.catalog.Stages(st)
	i := seq.Find(status)
	if i <= 0 {
		return "", false
	}
	return seq[i-1], true
}

// IsComplete is true only for the literal terminal stage id.
func IsComplete(status Stage) bool {
	return status == StageComplete
}

// ColorClass is a badge colour for the portal UI.
type ColorClass string

const (
	ColorBlue  ColorClass = "blue"
	ColorTeal  ColorClass = "teal"
	ColorAmber ColorClass = "amber"
	ColorGreen ColorClass = "green"
	ColorRed   ColorClass = "red"
	ColorSlate ColorClass = "slate"
)

// ColorClassFor classifies a status by keyword. "delivered"/"scheduled" are
// checked before "filed"/"awaiting".
func ColorClassFor(status Stage) ColorClass {
	s := string(status)
	switch {
	case status == StageComplete:
		return ColorGreen
	case status == StagePaymentReceived:
		return ColorSlate
	case strings.Contains(s, "delivered"), strings.Contains(s, "scheduled"):
		return ColorTeal
	case strings.Contains(s, "filed"), strings.Contains(s, "awaiting"):
		return ColorBlue
	default:
		return ColorBlue
	}
}

// StepState is how a timeline step renders.
type StepState string

const (
	StepDone     StepState = "done"
	StepCurrent  StepState = "current"
	StepUpcoming StepState = "upcoming"
)

// TimelineStep is one entry of the portal's stage stepper.
type TimelineStep struct {
	Stage Stage     `json:"stage"`
	Label string    `json:"label"`
	State StepState `json:"state"`
}

// Timeline renders the whole sequence relative to status. A complete
// project shows every step done.
func (w *Workflow) Timeline(st ServiceType, status Stage) []TimelineStep {
	seq := w.catalog.Stages(st)
	current := w.IndexOf(st, status)
	done := IsComplete(status)

	steps := make([]TimelineStep, 0, seq.Len())
	for i, stage := range seq {
		state := StepUpcoming
		switch {
		case i < current, done:
			state = StepDone
		case i == current:
			state = StepCurrent
		}
		steps = append(steps, TimelineStep{Stage: stage, Label: w.catalog.StageLabel(stage), State: state})
	}
	return steps
}
