package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"distress/internal/api"
	"distress/internal/controller"
	"distress/internal/dom"
)

var registerFlags api.Registration

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Register a new account. Latitude and longitude are sent as typed;
the server decides whether they are valid.

Example:
  distress register --name Ann --email ann@example.com --password secret --latitude 12.97 --longitude 77.59`,
	RunE: runRegister,
}

func init() {
	f := registerCmd.Flags()
	f.StringVar(&registerFlags.Name, "name", "", "display name")
	f.StringVar(&registerFlags.Email, "email", "", "account email")
	f.StringVar(&registerFlags.Password, "password", "", "account password")
	f.StringVar(&registerFlags.Latitude, "latitude", "", "home latitude")
	f.StringVar(&registerFlags.Longitude, "longitude", "", "home longitude")
	rootCmd.AddCommand(registerCmd)
}

var errNotRegistered = errors.New("registration failed")

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c, err := wire(cmd.Context(), cfg, wireOptions{
		logOut:  cmd.ErrOrStderr(),
		docOpts: []dom.Option{dom.WithAlertWriter(cmd.OutOrStdout())},
	})
	if err != nil {
		return err
	}
	defer c.close()

	c.ctrl.Register(cmd.Context(), registerFlags)
	if c.doc.LastAlert() != controller.MsgRegistered {
		return errNotRegistered
	}
	return nil
}
