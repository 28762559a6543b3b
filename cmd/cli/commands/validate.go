package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nivobank/backoffice/internal/cli"
)

var strictValidation bool

var validateCmd = &cobra.Command{
	Use:   "validate <payload-file>",
	Short: "Check an onboarding payload file locally",
	Long: `Run the onboarding payload checks against a local JSON file,
without calling the API. With --strict the submission gate is applied:
every section must be complete and well-formed.

Examples:
  backoffice validate payload.json
  backoffice validate payload.json --strict`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := cli.ValidatePayloadFile(args[0], strictValidation)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			printJSON(result)
			if !result.Valid {
				os.Exit(1)
			}
			return
		}

		if result.Valid {
			fmt.Println("✅ Payload is valid")
			return
		}

		fmt.Printf("❌ Payload has %d problem(s):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("   • %s\n", e)
		}
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&strictValidation, "strict", false, "Apply the submission gate (all sections required)")
}
