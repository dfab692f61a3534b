package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"remoting-login/internal/loginform"

	"github.com/segmentio/go-prompt"
	"github.com/spf13/cobra"
)

var errRemoteFault = errors.New("remote call failed")

var (
	username string
	password string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit credentials once from the terminal and print the status",
	Long: `submit asks for a username and a masked password unless they are
given as flags, calls calc.sum on the gateway and prints the status text.
Empty values are accepted and sent as-is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("username") {
			username = prompt.String("Username")
		}
		if !cmd.Flags().Changed("password") {
			password = prompt.PasswordMasked("Password")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdown, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())

		form := loginform.New(cfg.GatewayURL)
		sub := form.Submit(ctx, loginform.Credentials{Username: username, Password: password})

		out, err := sub.Wait(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", loginform.SumProcedure, err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), out.StatusText(form.Operands()))
		if !out.Succeeded() {
			return errRemoteFault
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&username, "username", "", "username sent as userid")
	submitCmd.Flags().StringVar(&password, "password", "", "password sent with the credentials")
}
