package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/realty/usecase/auth"
)

var (
	loginEmail       string
	loginPassword    string
	logoutEverywhere bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open a session and print the access token",
	Long: `Open a session and print the access token.

Export it for later commands:
  export REALTY_TOKEN=$(realtyctl login --email me@example.com --password ... )`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the current session",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	logoutCmd.Flags().BoolVar(&logoutEverywhere, "everywhere", false, "revoke every session of the account")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if loginEmail == "" || loginPassword == "" {
		return errors.New("--email and --password are required")
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var tokens auth.Tokens
	err := newClient().Post(ctx, "/auth/login", map[string]string{
		"email":    loginEmail,
		"password": loginPassword,
	}, &tokens)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), tokens)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tokens.AccessToken)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var out struct {
		Revoked int `json:"revoked"`
	}
	if err := newClient().Post(ctx, "/auth/logout", map[string]bool{"everywhere": logoutEverywhere}, &out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "revoked %d session(s)\n", out.Revoked)
	return nil
}
