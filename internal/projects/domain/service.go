package domain

import "strings"

// ServiceType is the kind of engagement a client paid for. It selects the
// stage sequence and default timeline, and never changes after creation.
type ServiceType string

const (
	ServiceConsultation        ServiceType = "consultation"
	ServicePatentSearch        ServiceType = "patent_search"
	ServicePatentDrafting      ServiceType = "patent_drafting"
	ServicePatentProsecution   ServiceType = "patent_prosecution"
	ServiceInternationalFiling ServiceType = "international_filing"
	ServiceFTO                 ServiceType = "fto"
	ServiceIllustrations       ServiceType = "illustrations"
	ServiceFiling              ServiceType = "filing"
	ServiceIPValuation         ServiceType = "ip_valuation"
)

func (s ServiceType) String() string { return string(s) }

// Stage is one step of a service type's workflow.
type Stage string

// Every sequence starts and ends with these.
const (
	StagePaymentReceived Stage = "payment_received"
	StageComplete        Stage = "complete"
)

func (s Stage) String() string { return string(s) }

// HumanizeIdentifier turns "office_action_review" into "Office Action Review".
func HumanizeIdentifier(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
