package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/ridhamz/AppointmentEase/cmd/http"
	systemcmd "github.com/ridhamz/AppointmentEase/cmd/system"
	usercmd "github.com/ridhamz/AppointmentEase/cmd/user"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "appointmentease",
	Short: "AppointmentEase books appointments between clients and professionals.",
	Long: `AppointmentEase is an appointment booking API. Clients book time slots with
professionals, professionals confirm and complete them, and administrators
oversee every booking. Overlapping bookings for one professional are rejected.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(usercmd.NewUserCommand())
}
