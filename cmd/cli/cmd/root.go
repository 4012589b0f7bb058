package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "shiftctl",
	Short: "Shiftctl is a command line tool for interacting with the shiftplane API",
	Long: `shiftctl is the command-line interface for the shiftplane scheduling service.

A company requests a job over a date range and a daily time window; shiftplane
splits it into one shift per calendar day. Talents are then booked onto shifts,
subject to a minimum rest period between two shifts on the same day.

Common workflows:

  Create a job (one shift per day from the 20th to the 24th, 18:00-20:00 UTC):
    shiftctl create --company <uuid> --start 2030-07-20T18:00:00Z --end 2030-07-24T20:00:00Z

  List the shifts of a job:
    shiftctl shifts <job-id>

  Book a talent:
    shiftctl book <shift-id> --talent <uuid>

  Cancel a shift, a whole job, or every shift of a talent:
    shiftctl cancel-shift <shift-id>
    shiftctl cancel-job <job-id>
    shiftctl cancel-talent <talent-id>

Configuration:
  Set the API endpoint via flag, environment variable or config file:
    SHIFTPLANE_URL    API endpoint (default: http://localhost:6161)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".shiftctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".shiftctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "SHIFTPLANE_VARNAME"
	viper.SetEnvPrefix("SHIFTPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shiftctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "shiftplane controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}

// newClient builds a client for the configured controller.
func newClient() *ShiftClient {
	return NewShiftClient(viper.GetString("url"))
}

// printError reports a failed API call on the command's output.
func printError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("Error (%d):\n", apiErr.StatusCode)
		for _, m := range apiErr.Messages {
			cmd.Printf("  - %s\n", m)
		}
		return
	}
	cmd.Printf("Error: %v\n", err)
}
