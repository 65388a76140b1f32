package source

import (
	"net/url"
	"strconv"
	"strings"
)

// parsePrice normalizes a scraped price string to a float. It strips
// currency symbols, thousands separators and surrounding text. Returns 0
// when no usable number remains.
func parsePrice(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

// parseAmazonPrice joins the separately rendered whole and fraction parts
// of an Amazon price. The whole part may carry thousands separators and a
// trailing decimal point of its own.
func parseAmazonPrice(whole, fraction string) float64 {
	w := digitsOnly(whole)
	if w == "" {
		return 0
	}
	f := digitsOnly(fraction)
	if f == "" {
		return parsePrice(w)
	}
	return parsePrice(w + "." + f)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseRating extracts the leading numeric rating from strings like
// "4.5 out of 5 stars" or "4.3". Parse failures yield 0.
func parseRating(s string) float64 {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0
	}
	rating, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return rating
}

// parseReviewCount extracts a review count from strings like "1,234" or
// "12,642 Ratings & 1,234 Reviews". Parse failures yield 0.
func parseReviewCount(s string) int {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0
	}
	cleaned := strings.ReplaceAll(fields[0], ",", "")
	cleaned = strings.Trim(cleaned, "()")
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

// resolveURL makes a possibly relative product link absolute against the
// source origin. Unparseable links come back unchanged.
func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
