// Package intent turns a finalized transcript into a shopping command
// and maps that command onto a cart mutation and a spoken reply. Both
// halves are pure functions so they can be tested without any I/O.
package intent

import (
	"strings"

	"shopvoice/internal/catalog"
)

type Kind string

const (
	Browse          Kind = "browse"
	AddToCart       Kind = "add_to_cart"
	QueryCart       Kind = "query_cart"
	RequestDiscount Kind = "request_discount"
	Checkout        Kind = "checkout"
	Unrecognized    Kind = "unrecognized"
)

// Intent is the classified shopping action. Product and Category are
// resolved against the catalog at parse time; HasProduct distinguishes
// an add with no catalog match.
type Intent struct {
	Kind       Kind
	Category   string
	Product    catalog.Product
	HasProduct bool
	Raw        string
}

var (
	checkoutWords = []string{"checkout", "check out", "pay", "purchase", "place my order"}
	discountWords = []string{"discount", "deal", "coupon", "cheaper"}
	addWords      = []string{"add", "buy", "i'll take", "i want", "get me"}
	cartWords     = []string{"cart", "basket"}
	browseWords   = []string{"show", "browse", "looking for", "find", "search"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Parse classifies a transcript. Matching is case-insensitive keyword
// search checked in fixed precedence: checkout, discount, add, cart
// query, browse. Add is checked before cart query so "add X to cart"
// is not mistaken for a listing request. Unknown transcripts come back
// as Unrecognized, never as an error.
func Parse(transcript string, cat *catalog.Catalog) Intent {
	text := strings.ToLower(strings.TrimSpace(transcript))
	in := Intent{Kind: Unrecognized, Raw: transcript}
	if text == "" {
		return in
	}

	switch {
	case containsAny(text, checkoutWords):
		in.Kind = Checkout
	case containsAny(text, discountWords):
		in.Kind = RequestDiscount
	case containsAny(text, addWords):
		in.Kind = AddToCart
		in.Product, in.HasProduct = cat.FindProduct(text)
	case containsAny(text, cartWords):
		in.Kind = QueryCart
	case containsAny(text, browseWords):
		in.Kind = Browse
		in.Category, _ = cat.FindCategory(text)
	default:
		// A bare category mention still counts as browsing.
		if c, ok := cat.FindCategory(text); ok {
			in.Kind = Browse
			in.Category = c
		}
	}
	return in
}
