package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"distress/internal/controller"
	"distress/internal/dom"
)

var sosFlags struct {
	email    string
	password string
}

var sosCmd = &cobra.Command{
	Use:   "sos",
	Short: "Sign in, send a distress signal and sign out",
	Long: `Sign in with the given credentials, send an SOS with the configured
position, then sign out. Every alert is printed on its own line.

Examples:
  distress sos --email ann@example.com --password secret --lat 12.97 --lng 77.59
  distress sos --email ann@example.com --password secret --nearest-helper`,
	RunE: runSOS,
}

func init() {
	sosCmd.Flags().StringVar(&sosFlags.email, "email", "", "account email")
	sosCmd.Flags().StringVar(&sosFlags.password, "password", "", "account password")
	_ = sosCmd.MarkFlagRequired("email")
	_ = sosCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(sosCmd)
}

var (
	errNotSignedIn = errors.New("not signed in")
	errSOSNotSent  = errors.New("sos not sent")
)

func runSOS(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c, err := wire(ctx, cfg, wireOptions{
		logOut:  cmd.ErrOrStderr(),
		docOpts: []dom.Option{dom.WithAlertWriter(cmd.OutOrStdout())},
	})
	if err != nil {
		return err
	}
	defer c.close()

	return sendSOS(ctx, c, sosFlags.email, sosFlags.password)
}

// sendSOS runs login, signal and logout against c. Alerts have already
// been printed when it returns an error.
func sendSOS(ctx context.Context, c *client, email, password string) error {
	c.ctrl.Login(ctx, email, password)
	if _, ok := c.ctrl.CurrentUser(); !ok {
		return errNotSignedIn
	}
	c.ctrl.SendDistressSignal(ctx)
	sent := c.doc.LastAlert() == controller.MsgSOSSent
	c.ctrl.Logout(ctx)
	if !sent {
		return errSOSNotSent
	}
	return nil
}
