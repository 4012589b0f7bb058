package cmd

import (
	"github.com/spf13/cobra"
)

var cancelJobCmd = &cobra.Command{
	Use:   "cancel-job [job_id]",
	Short: "Cancel a job and delete all of its shifts",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := newClient().CancelJob(args[0]); err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Job %s cancelled\n", args[0])
	},
}

var cancelShiftCmd = &cobra.Command{
	Use:   "cancel-shift [shift_id]",
	Short: "Cancel a single shift (a job keeps at least one)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := newClient().CancelShift(args[0]); err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Shift %s cancelled\n", args[0])
	},
}

var cancelTalentCmd = &cobra.Command{
	Use:   "cancel-talent [talent_id]",
	Short: "Remove a talent from every shift it holds",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := newClient().CancelTalentShifts(args[0]); err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Talent %s removed from all shifts\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(cancelJobCmd)
	rootCmd.AddCommand(cancelShiftCmd)
	rootCmd.AddCommand(cancelTalentCmd)
}
