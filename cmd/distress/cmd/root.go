package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var flags struct {
	envFile   string
	server    string
	latitude  string
	longitude string
	recipient string
	helpers   bool
	logLevel  string
}

var rootCmd = &cobra.Command{
	Use:   "distress",
	Short: "Sign in and send SOS alerts from the terminal",
	Long: `distress is a terminal client for the SOS alert server.

Run without a command to open the interactive UI. Headless commands:
  sos        Sign in, send a distress signal, sign out
  register   Create an account
  serve      Run an in-memory server for local testing

Settings come from .env, then DISTRESS_* environment variables, then flags.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load (missing is fine)")
	pf.StringVar(&flags.server, "server", "", "server base URL (overrides $DISTRESS_SERVER_URL)")
	pf.StringVar(&flags.latitude, "lat", "", "static latitude used for SOS")
	pf.StringVar(&flags.longitude, "lng", "", "static longitude used for SOS")
	pf.StringVar(&flags.recipient, "recipient", "", "SOS recipient when no helper lookup is done")
	pf.BoolVar(&flags.helpers, "nearest-helper", false, "send SOS to the nearest registered helper")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
}
