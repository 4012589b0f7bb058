package cmd

import (
	"shiftplane/pkg/api"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job and its daily shifts",
	Long: `Create a job for a company. The date range runs from --start to --end and
every day gets one shift using the clock time of --start and --end.
Times without a zone are read as UTC.

Example:
  shiftctl create --company 6f1c...e2 --start 2030-07-20T18:00:00Z --end 2030-07-24T20:00:00Z`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		company, _ := flags.GetString("company")
		startStr, _ := flags.GetString("start")
		endStr, _ := flags.GetString("end")

		if company == "" {
			cmd.Println("Error: --company is required")
			return
		}

		start, err := api.ParseTimestamp(startStr)
		if err != nil {
			cmd.Println("Error: --start must be an RFC3339 or zone-less ISO timestamp")
			return
		}
		end, err := api.ParseTimestamp(endStr)
		if err != nil {
			cmd.Println("Error: --end must be an RFC3339 or zone-less ISO timestamp")
			return
		}

		result, err := newClient().CreateJob(api.CreateJobRequest{
			CompanyID: company,
			Start:     api.NewTimestamp(start),
			End:       api.NewTimestamp(end),
		})
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("✓ Job created!\nID: %s\n", result.JobID)
	},
}

func init() {
	flags := createCmd.Flags()
	flags.StringP("company", "c", "", "Company ID (required)")
	flags.StringP("start", "s", "", "First day and daily start time, RFC3339 or zone-less UTC (required)")
	flags.StringP("end", "e", "", "Last day and daily end time, RFC3339 or zone-less UTC (required)")

	rootCmd.AddCommand(createCmd)
}
