package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nivobank/backoffice/internal/cli"
	"github.com/nivobank/backoffice/internal/models"
)

var (
	statusFilter      string
	listLimit         int
	listOffset        int
	transitionComment string
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect and manage onboarding requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List onboarding requests",
	Long: `List onboarding requests visible to the authenticated user.

Examples:
  backoffice requests list
  backoffice requests list --status REQSTATUS00033
  backoffice requests list --limit 50 --json`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()

		result, err := client.ListRequests(statusFilter, listLimit, listOffset)
		if err != nil {
			fmt.Printf("❌ Failed to list requests: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			printJSON(result)
			return
		}

		printRequestList(result)
	},
}

var requestsShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show one request with its status ledger",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()

		req, err := client.GetRequest(args[0])
		if err != nil {
			fmt.Printf("❌ Failed to get request: %v\n", err)
			os.Exit(1)
		}

		history, err := client.GetHistory(args[0])
		if err != nil {
			fmt.Printf("❌ Failed to get request history: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			printJSON(map[string]interface{}{
				"request": req,
				"history": history.Entries,
			})
			return
		}

		printRequest(req, history.Entries)
	},
}

var requestsTransitionCmd = &cobra.Command{
	Use:   "transition <request-id> <target-status-code>",
	Short: "Move a request to a target status",
	Long: `Move a request to a target status. The server enforces the full
guard set (tenancy, role gates, catalog activation, terminal states).

Examples:
  backoffice requests transition 4f1c... REQSTATUS00035
  backoffice requests transition 4f1c... REQSTATUS00034 --comment "Missing address proof"`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()

		var comment *string
		if transitionComment != "" {
			comment = &transitionComment
		}

		req, err := client.Transition(args[0], args[1], comment)
		if err != nil {
			fmt.Printf("❌ Transition failed: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			printJSON(req)
			return
		}

		fmt.Printf("✅ Request %s moved to %s\n", req.ID, statusLabel(req))
	},
}

func init() {
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsShowCmd)
	requestsCmd.AddCommand(requestsTransitionCmd)

	requestsListCmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status code")
	requestsListCmd.Flags().IntVar(&listLimit, "limit", 20, "Page size")
	requestsListCmd.Flags().IntVar(&listOffset, "offset", 0, "Page offset")

	requestsTransitionCmd.Flags().StringVar(&transitionComment, "comment", "", "Comment recorded in the ledger")
}

func newClient() *cli.Client {
	apiURL := viper.GetString("api.url")
	apiToken := viper.GetString("api.token")
	client := cli.NewClient(apiURL, apiToken)

	if err := client.HealthCheck(); err != nil {
		fmt.Printf("❌ API health check failed: %v\n", err)
		fmt.Println("💡 Tip: Make sure the API server is running")
		os.Exit(1)
	}

	return client
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("❌ Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func printRequestList(result *models.RequestListResponse) {
	if len(result.Requests) == 0 {
		fmt.Println("📭 No requests found")
		return
	}

	fmt.Printf("\n📋 Showing %d of %d request(s):\n\n", len(result.Requests), result.Total)
	fmt.Printf("%-38s %-22s %-8s %s\n", "ID", "Status", "Version", "Updated")

	for _, req := range result.Requests {
		fmt.Printf("%-38s %-22s %-8d %s\n",
			req.ID, statusLabel(&req), req.Version,
			req.UpdatedAt.Format(time.RFC3339))
	}
}

func printRequest(req *models.OnboardingRequest, entries []models.HistoryEntry) {
	fmt.Printf("\n📄 Request %s\n", req.ID)
	fmt.Printf("   Bank:    %s\n", req.BankID)
	fmt.Printf("   Agency:  %s\n", req.AgencyID)
	fmt.Printf("   Agent:   %s\n", req.AgentID)
	fmt.Printf("   Status:  %s\n", statusLabel(req))
	fmt.Printf("   Version: %d\n", req.Version)
	if req.ValidationComment != nil {
		fmt.Printf("   Comment: %s\n", *req.ValidationComment)
	}

	if len(entries) > 0 {
		fmt.Printf("\n🕘 History (%d entries):\n", len(entries))
		for _, e := range entries {
			comment := ""
			if e.Comment != nil {
				comment = " - " + *e.Comment
			}
			fmt.Printf("   %s  %s%s\n", e.CreatedAt.Format(time.RFC3339), e.StatusCode, comment)
		}
	}
}

func statusLabel(req *models.OnboardingRequest) string {
	if req.Status != nil {
		return fmt.Sprintf("%s (%s)", req.Status.Code, req.Status.Label)
	}
	return req.StatusID.String()
}
