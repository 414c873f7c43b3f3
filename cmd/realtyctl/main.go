// Command realtyctl is a thin client for the realty workspace API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/realty/pkg/apiclient"
)

var (
	serverURL string
	token     string
	timeout   time.Duration
	asJSON    bool

	// httpClient overrides the transport; tests point it at an in-memory listener.
	httpClient *fasthttp.Client
)

var rootCmd = &cobra.Command{
	Use:           "realtyctl",
	Short:         "Manage listings, billing and the review queue from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			token = os.Getenv("REALTY_TOKEN")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("REALTY_SERVER", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (default $REALTY_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	rootCmd.AddCommand(loginCmd, logoutCmd, listingsCmd, subscriptionCmd, geocodeCmd, regionsCmd, adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *apiclient.Client {
	return apiclient.New(apiclient.Config{
		BaseURL:    serverURL,
		Token:      token,
		Timeout:    timeout,
		HTTPClient: httpClient,
	})
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
