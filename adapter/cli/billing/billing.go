package billing

import "github.com/spf13/cobra"

// Cmd is the billing command group.
var Cmd = &cobra.Command{
	Use:   "billing",
	Short: "Record checkout payments",
	Long:  `Replay normalized checkout payments into projects, for imports and missed webhooks.`,
}

func init() {
	Cmd.AddCommand(recordCmd)
}
