package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fastygo/realty/domain"
)

var listingsCmd = &cobra.Command{
	Use:     "listings",
	Aliases: []string{"ls"},
	Short:   "Work with the listing collection",
}

var listingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show visible listings",
	RunE:  runListingsList,
}

var listingsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runListingsGet,
}

var listingsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a listing",
	RunE:  runListingsCreate,
}

var listingsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runListingsDelete,
}

var (
	filterDeal   string
	filterStatus string
	filterType   string
	filterTags   []string

	createTitle   string
	createAddress string
	createPrice   string
	createDeal    string
	createType    string
	createRooms   int
	createTags    []string
)

func init() {
	listingsListCmd.Flags().StringVar(&filterDeal, "deal", "", "sale or rent")
	listingsListCmd.Flags().StringVar(&filterStatus, "status", "", "available, rented, sold or reserved")
	listingsListCmd.Flags().StringVar(&filterType, "type", "", "studio, 1+1, 2+1, 3+1, house or commercial")
	listingsListCmd.Flags().StringSliceVar(&filterTags, "tag", nil, "required feature, repeatable")

	listingsCreateCmd.Flags().StringVar(&createTitle, "title", "", "listing title")
	listingsCreateCmd.Flags().StringVar(&createAddress, "address", "", "street address")
	listingsCreateCmd.Flags().StringVar(&createPrice, "price", "", "asking price")
	listingsCreateCmd.Flags().StringVar(&createDeal, "deal", "sale", "sale or rent")
	listingsCreateCmd.Flags().StringVar(&createType, "type", "2+1", "property layout")
	listingsCreateCmd.Flags().IntVar(&createRooms, "rooms", 0, "number of rooms")
	listingsCreateCmd.Flags().StringSliceVar(&createTags, "tag", nil, "feature tag, repeatable")

	listingsCmd.AddCommand(listingsListCmd, listingsGetCmd, listingsCreateCmd, listingsDeleteCmd)
}

func runListingsList(cmd *cobra.Command, args []string) error {
	query := url.Values{}
	if filterDeal != "" {
		query.Set("deal_type", filterDeal)
	}
	if filterStatus != "" {
		query.Set("status", filterStatus)
	}
	if filterType != "" {
		query.Set("property_type", filterType)
	}
	if len(filterTags) > 0 {
		query.Set("tags", strings.Join(filterTags, ","))
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var listings []domain.Listing
	if err := newClient().Get(ctx, "/listings", query, &listings); err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), listings)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDEAL\tTYPE\tPRICE\tSTATUS")
	for _, l := range listings {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Title, l.DealType, l.PropertyType.Label(), l.Price.String(), l.PropertyStatus)
	}
	return w.Flush()
}

func runListingsGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var listing domain.Listing
	if err := newClient().Get(ctx, "/listings/"+url.PathEscape(args[0]), nil, &listing); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), listing)
}

func runListingsCreate(cmd *cobra.Command, args []string) error {
	if createTitle == "" || createAddress == "" || createPrice == "" {
		return errors.New("--title, --address and --price are required")
	}
	price, err := decimal.NewFromString(createPrice)
	if err != nil {
		return fmt.Errorf("--price: %w", err)
	}
	body := map[string]interface{}{
		"title":         createTitle,
		"address":       createAddress,
		"price":         price,
		"deal_type":     createDeal,
		"property_type": createType,
	}
	if cmd.Flags().Changed("rooms") {
		body["rooms"] = createRooms
	}
	if len(createTags) > 0 {
		body["tags"] = createTags
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var created domain.Listing
	if err := newClient().Post(ctx, "/listings", body, &created); err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), created)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created listing %d\n", created.ID)
	return nil
}

func runListingsDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := newClient().Delete(ctx, "/listings/"+url.PathEscape(args[0]), nil); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted listing %s\n", args[0])
	return nil
}
