package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/pricelens/pkg/types"
)

func wishlistCmd() *cobra.Command {
	wishlistRoot := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage tracked wishlist items",
		Long: "Manage wishlist items whose prices are re-checked on a schedule and\n" +
			"alert when they drop to your target.",
	}

	wishlistRoot.AddCommand(
		wishlistListCmd(),
		wishlistGetCmd(),
		wishlistTrackCmd(),
		wishlistTargetCmd(),
		wishlistAckCmd(),
		wishlistRefreshCmd(),
		wishlistRemoveCmd(),
	)

	return wishlistRoot
}

func wishlistListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracked items",
		Example: `  plens wishlist list
  plens wishlist list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			items, err := c.ListItems(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(items)
			}
			if len(items) == 0 {
				fmt.Println("No tracked items.")
				return nil
			}
			return printItemTable(items)
		},
	}
}

func wishlistGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show tracked item details",
		Example: `  plens wishlist get abc123
  plens wishlist get abc123 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			item, err := c.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(item)
			}
			return printItemDetail(item)
		},
	}
}

func wishlistTrackCmd() *cobra.Command {
	var (
		trackTitle    string
		trackPrice    float64
		trackStore    string
		trackURL      string
		trackImageURL string
		trackKeywords []string
		trackTarget   float64
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Track a new item",
		Long: "Start tracking an offer. The keywords are reused for scheduled price\n" +
			"re-checks, so pick the ones that found the product in the first place.",
		Example: `  plens wishlist track --title "Sony WH-1000XM5" --price 29990 \
    --store Amazon --url "https://www.amazon.in/dp/B09XS7JWHH" \
    --keyword sony --keyword headphones`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if trackTitle == "" || trackPrice <= 0 {
				return fmt.Errorf("--title and a positive --price are required")
			}
			if len(trackKeywords) == 0 {
				return fmt.Errorf("at least one --keyword is required")
			}
			offer := domain.Offer{
				Title:      trackTitle,
				Price:      trackPrice,
				Store:      trackStore,
				ProductURL: trackURL,
				ImageURL:   trackImageURL,
			}
			var target *float64
			if trackTarget > 0 {
				target = &trackTarget
			}
			c := newClient()
			item, err := c.Track(cmd.Context(), offer, trackKeywords, target)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(item)
			}
			fmt.Printf("Tracking: %s (%s)\n", item.Title, item.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&trackTitle, "title", "", "product title")
	cmd.Flags().Float64Var(&trackPrice, "price", 0, "current price")
	cmd.Flags().StringVar(&trackStore, "store", "", "store the offer came from")
	cmd.Flags().StringVar(&trackURL, "url", "", "product page URL")
	cmd.Flags().StringVar(&trackImageURL, "image-url", "", "product image URL")
	cmd.Flags().StringArrayVar(&trackKeywords, "keyword", nil, "search keyword (repeatable)")
	cmd.Flags().Float64Var(&trackTarget, "target", 0, "alert when the price drops to this value")

	return cmd
}

func wishlistTargetCmd() *cobra.Command {
	var clearTarget bool

	cmd := &cobra.Command{
		Use:   "target <id> [price]",
		Short: "Set or clear the item's target price",
		Example: `  plens wishlist target abc123 24999
  plens wishlist target abc123 --clear`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *float64
			switch {
			case clearTarget:
				if len(args) > 1 {
					return fmt.Errorf("--clear takes no price argument")
				}
			case len(args) == 2:
				price, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid price %q", args[1])
				}
				target = &price
			default:
				return fmt.Errorf("provide a price or --clear")
			}

			c := newClient()
			item, err := c.SetTarget(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(item)
			}
			if item.TargetPrice == nil {
				fmt.Printf("Target cleared for %s.\n", item.ID)
			} else {
				fmt.Printf("Target for %s set to ₹%.2f.\n", item.ID, *item.TargetPrice)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearTarget, "clear", false, "clear the target price")

	return cmd
}

func wishlistAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ack <id>",
		Short:   "Acknowledge a fired alert so it can re-arm",
		Example: `  plens wishlist ack abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			item, err := c.Acknowledge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(item)
			}
			fmt.Printf("Alert acknowledged for %s.\n", item.ID)
			return nil
		},
	}
}

func wishlistRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh <id>",
		Short:   "Re-check the item's price now",
		Example: `  plens wishlist refresh abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			item, err := c.Refresh(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(item)
			}
			return printItemDetail(item)
		},
	}
}

func wishlistRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Short:   "Stop tracking an item",
		Example: `  plens wishlist remove abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if err := c.RemoveItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Item %s removed.\n", args[0])
			return nil
		},
	}
}
