package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var shiftsCmd = &cobra.Command{
	Use:   "shifts [job_id]",
	Short: "List the shifts of a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		shifts, err := newClient().ListShifts(args[0])
		if err != nil {
			printError(cmd, err)
			return
		}

		if len(shifts) == 0 {
			cmd.Println("No shifts found for this job.")
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SHIFT ID\tSTART\tEND\tTALENT")
		for _, s := range shifts {
			talent := "-"
			if s.TalentID != nil {
				talent = *s.TalentID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				s.ID,
				s.Start.Format(time.RFC3339),
				s.End.Format(time.RFC3339),
				talent,
			)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(shiftsCmd)
}
