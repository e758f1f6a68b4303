package project

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/internal/projects/application/queries"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
)

// Cmd is the project command group
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Manage client projects",
	Long:  `Create projects, move them through their service workflow, adjust delivery dates and track milestones.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(advanceCmd)
	Cmd.AddCommand(annotateCmd)
	Cmd.AddCommand(scheduleCmd)
	Cmd.AddCommand(milestoneCmd)
	Cmd.AddCommand(dashboardCmd)
}

func parseID(kind, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	return id, nil
}

func urgencyIcon(urgency string) string {
	switch domain.Urgency(urgency) {
	case domain.UrgencyOverdue:
		return "🔴"
	case domain.UrgencyUrgent:
		return "🟠"
	case domain.UrgencyNormal:
		return "🟢"
	default:
		return "⚪"
	}
}

func stepIcon(state domain.StepState) string {
	switch state {
	case domain.StepDone:
		return "✅"
	case domain.StepCurrent:
		return "▶️"
	default:
		return "  "
	}
}

// deliveryLine describes where a project stands against its estimate.
func deliveryLine(p queries.ProjectDTO) string {
	if p.ActualDelivery != nil {
		return "delivered " + *p.ActualDelivery
	}
	if p.EstimatedDelivery == nil {
		return "no estimate"
	}
	var b strings.Builder
	b.WriteString("due " + *p.EstimatedDelivery)
	if p.DeliveryOverridden {
		b.WriteString(" (set manually)")
	}
	if p.DaysRemaining != nil {
		days := *p.DaysRemaining
		switch {
		case days < 0:
			fmt.Fprintf(&b, ", %d days overdue", -days)
		case days == 0:
			b.WriteString(", due today")
		default:
			fmt.Fprintf(&b, ", %d days left", days)
		}
	}
	return b.String()
}

func printSummary(out io.Writer, p queries.ProjectDTO) {
	fmt.Fprintf(out, "%s %s  %s\n", urgencyIcon(p.Urgency), p.ID.String()[:8], p.Title)
	fmt.Fprintf(out, "     %s · %s (%d%%) · %s\n", p.ServiceLabel, p.StatusLabel, p.ProgressPercent, deliveryLine(p))
}
