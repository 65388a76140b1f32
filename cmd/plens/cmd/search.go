package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/pricelens/internal/api/client"
)

func searchCmd() *cobra.Command {
	searchRoot := &cobra.Command{
		Use:   "search",
		Short: "Search retail stores for product offers",
		Long: "Search Amazon and Flipkart for product offers, either with a free-text\n" +
			"query or by uploading a product photo for keyword extraction.",
	}

	searchRoot.AddCommand(
		searchTextCmd(),
		searchImageCmd(),
	)

	return searchRoot
}

func searchTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <query>",
		Short: "Search with a free-text query",
		Example: `  plens search text "sony wh-1000xm5"
  plens search text "running shoes" --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			result, err := c.SearchText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printSearchResult(result)
		},
	}
}

func searchImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image <file>",
		Short: "Search with a product photo",
		Long: "Uploads a photo, extracts product keywords from it, and searches the\n" +
			"retail stores with those keywords.",
		Example: `  plens search image shoe.jpg
  plens search image headphones.png --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening image: %w", err)
			}
			defer f.Close()

			c := newClient()
			result, err := c.SearchImage(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return printSearchResult(result)
		},
	}
}

func printSearchResult(result *apiclient.SearchResult) error {
	if jsonOutput() {
		return outputJSON(result)
	}
	if len(result.Keywords) > 0 {
		fmt.Println("Keywords:", strings.Join(result.Keywords, ", "))
	}
	if len(result.Offers) == 0 {
		fmt.Println("No offers found.")
		return nil
	}
	return printOfferTable(result.Offers)
}
