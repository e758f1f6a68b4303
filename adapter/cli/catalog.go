package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List service types and their stages",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		catalog := app.Catalog
		for _, st := range catalog.ServiceTypes() {
			timeline := "no default timeline"
			if days := catalog.DefaultTimelineDays(st); days != nil {
				timeline = fmt.Sprintf("%d days", *days)
			}
			fmt.Fprintf(out, "%s (%s, %s)\n", catalog.ServiceLabel(st), st, timeline)

			stages := catalog.Stages(st)
			labels := make([]string, 0, stages.Len())
			for _, stage := range stages {
				labels = append(labels, catalog.StageLabel(stage))
			}
			fmt.Fprintf(out, "  %s\n", strings.Join(labels, " → "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
