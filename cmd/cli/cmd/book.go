package cmd

import (
	"github.com/spf13/cobra"
)

var bookCmd = &cobra.Command{
	Use:   "book [shift_id]",
	Short: "Book a talent onto a shift",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		talent, _ := cmd.Flags().GetString("talent")
		if talent == "" {
			cmd.Println("Error: --talent is required")
			return
		}

		if err := newClient().BookTalent(args[0], talent); err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("✓ Talent %s booked on shift %s\n", talent, args[0])
	},
}

func init() {
	bookCmd.Flags().StringP("talent", "t", "", "Talent ID (required)")
	rootCmd.AddCommand(bookCmd)
}
