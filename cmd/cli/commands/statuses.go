package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List the onboarding status catalog",
	Long: `List the onboarding status catalog with each status's workflow
properties.

Examples:
  backoffice statuses
  backoffice statuses --json`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()

		result, err := client.ListStatuses()
		if err != nil {
			fmt.Printf("❌ Failed to list statuses: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			printJSON(result)
			return
		}

		fmt.Printf("\n📋 Status catalog (%d entries):\n\n", result.Total)
		fmt.Printf("%-18s %-22s %-6s %-8s %-6s %s\n", "Code", "Label", "Rank", "Active", "Edit", "Gates")

		for _, s := range result.Statuses {
			gates := ""
			if s.RequiresCTO {
				gates += "cto "
			}
			if s.RequiresN1 {
				gates += "n1 "
			}
			if s.RequiresN2 {
				gates += "n2 "
			}
			if s.Step != nil {
				gates += "step=" + string(*s.Step)
			}

			fmt.Printf("%-18s %-22s %-6d %-8t %-6t %s\n",
				s.Code, s.Label, s.Rank, s.IsActive, s.AllowsEdit, gates)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusesCmd)
}
