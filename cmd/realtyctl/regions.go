package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/fastygo/realty/domain"
)

var regionsCmd = &cobra.Command{
	Use:   "regions [id|slug|uuid]",
	Short: "List service regions or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegions,
}

func runRegions(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if len(args) == 1 {
		var region domain.Region
		if err := newClient().Get(ctx, "/regions/"+url.PathEscape(args[0]), nil, &region); err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), region)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", region.ID, region.Slug, region.Name, region.UUID)
		return nil
	}

	var regions []domain.Region
	if err := newClient().Get(ctx, "/regions", nil, &regions); err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), regions)
	}
	for _, r := range regions {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", r.ID, r.Slug, r.Name)
	}
	return nil
}
