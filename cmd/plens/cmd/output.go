package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printOfferTable(offers []domain.Offer) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TITLE\tPRICE\tSTORE\tRATING\tURL\n")
	for i := range offers {
		rating := "-"
		if offers[i].Rating > 0 {
			rating = fmt.Sprintf("%.1f (%d)", offers[i].Rating, offers[i].ReviewCount)
		}
		tw.writef("%s\t₹%.2f\t%s\t%s\t%s\n",
			truncate(offers[i].Title, 40),
			offers[i].Price,
			offers[i].Store,
			rating,
			truncate(offers[i].ProductURL, 50),
		)
	}
	return tw.finish()
}

func printItemTable(items []domain.TrackedItem) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tCURRENT\tTARGET\tLOWEST\tSTORE\tSTATE\n")
	for i := range items {
		target := "-"
		if items[i].TargetPrice != nil {
			target = fmt.Sprintf("₹%.2f", *items[i].TargetPrice)
		}
		tw.writef("%s\t%s\t₹%.2f\t%s\t₹%.2f\t%s\t%s\n",
			items[i].ID,
			truncate(items[i].Title, 40),
			items[i].CurrentPrice,
			target,
			items[i].LowestPrice,
			items[i].Store,
			items[i].State,
		)
	}
	return tw.finish()
}

func printItemDetail(item *domain.TrackedItem) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", item.ID)
	tw.writef("Title:\t%s\n", item.Title)
	tw.writef("Keywords:\t%s\n", strings.Join(item.Keywords, ", "))
	tw.writef("Store:\t%s\n", item.Store)
	tw.writef("Current:\t₹%.2f\n", item.CurrentPrice)
	tw.writef("Original:\t₹%.2f\n", item.OriginalPrice)
	tw.writef("Lowest:\t₹%.2f\n", item.LowestPrice)
	if item.TargetPrice != nil {
		tw.writef("Target:\t₹%.2f\n", *item.TargetPrice)
	} else {
		tw.writef("Target:\t-\n")
	}
	tw.writef("State:\t%s\n", item.State)
	if item.LastCheckedAt != nil {
		tw.writef("Checked:\t%s\n", item.LastCheckedAt.Format("2006-01-02 15:04:05"))
	} else {
		tw.writef("Checked:\tnever\n")
	}
	tw.writef("URL:\t%s\n", item.ProductURL)
	return tw.finish()
}

func printHistoryTable(records []domain.SearchRecord) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("WHEN\tTYPE\tKEYWORDS\tOFFERS\n")
	for i := range records {
		tw.writef("%s\t%s\t%s\t%d\n",
			records[i].SearchedAt.Format("2006-01-02 15:04:05"),
			records[i].QueryType,
			truncate(strings.Join(records[i].Keywords, ", "), 50),
			records[i].OfferCount,
		)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
