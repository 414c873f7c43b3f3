package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/realty/domain"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Look up addresses",
}

var geocodeSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Suggest addresses for a partial query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGeocodeSearch,
}

var geocodeReverseCmd = &cobra.Command{
	Use:   "reverse <lat> <lng>",
	Short: "Describe the place at a point",
	Args:  cobra.ExactArgs(2),
	RunE:  runGeocodeReverse,
}

func init() {
	geocodeCmd.AddCommand(geocodeSearchCmd, geocodeReverseCmd)
}

func runGeocodeSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var results []domain.GeocodeResult
	query := url.Values{"q": {strings.Join(args, " ")}}
	if err := newClient().Get(ctx, "/geocode/search", query, &results); err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), results)
	}
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%.6f,%.6f\t%s\n", r.Lat, r.Lng, r.FormattedAddress)
	}
	return nil
}

func runGeocodeReverse(cmd *cobra.Command, args []string) error {
	for _, a := range args {
		if _, err := strconv.ParseFloat(a, 64); err != nil {
			return fmt.Errorf("invalid coordinate %q", a)
		}
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var out struct {
		Address string `json:"address"`
	}
	query := url.Values{"lat": {args[0]}, "lng": {args[1]}}
	if err := newClient().Get(ctx, "/geocode/reverse", query, &out); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Address)
	return nil
}
