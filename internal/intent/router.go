package intent

import (
	"fmt"
	"strings"

	"shopvoice/internal/cart"
	"shopvoice/internal/catalog"
	"shopvoice/internal/emotion"
	"shopvoice/internal/pricing"
)

// Outcome is everything a routed command wants to happen. Cart is the
// new cart value (unchanged for no-op intents). Charge marks a checkout
// that should go to the payment collaborator for ChargeTotal; the
// router itself performs no I/O.
type Outcome struct {
	Cart        cart.Cart
	Response    string
	Offer       *pricing.Offer
	Charge      bool
	ChargeTotal float64
}

var empathy = map[emotion.State]string{
	emotion.Frustrated: "I hear you. ",
	emotion.Confused:   "No worries, I can help. ",
	emotion.Happy:      "Glad to hear it! ",
	emotion.Neutral:    "",
}

// Route maps an intent plus the shopper's emotional state onto an
// outcome. Discounts are computed only for discount and checkout
// intents, never silently on adds or browsing.
func Route(in Intent, state emotion.State, c cart.Cart, cat *catalog.Catalog) Outcome {
	out := Outcome{Cart: c}

	switch in.Kind {
	case Browse:
		out.Response = empathy[state] + browseReply(in.Category, cat)

	case AddToCart:
		if !in.HasProduct {
			out.Response = "Sorry, I couldn't find that product. " + browseReply("", cat)
			return out
		}
		out.Cart = c.Add(in.Product)
		out.Response = fmt.Sprintf("%sAdded %s to your cart for $%.2f. You now have %d item%s.",
			empathy[state], in.Product.Name, in.Product.Price, out.Cart.Items(), plural(out.Cart.Items()))

	case QueryCart:
		if c.Empty() {
			out.Response = "Your cart is empty. Ask me to show you what we have."
			return out
		}
		out.Response = fmt.Sprintf("You have %d item%s: %s. That's $%.2f in total.",
			c.Items(), plural(c.Items()), c.Summary(), c.Total())

	case RequestDiscount:
		offer := pricing.ForEmotion(state)
		out.Offer = &offer
		if offer.Percentage == 0 {
			out.Response = "I can't offer a discount right now, but say checkout and I'll total you up."
			return out
		}
		out.Response = fmt.Sprintf("%sI can take %d%% off your order today.",
			empathy[state], offer.Percentage)

	case Checkout:
		if c.Empty() {
			out.Response = "Your cart is empty, there's nothing to check out yet."
			return out
		}
		offer := pricing.ForEmotion(state)
		out.Offer = &offer
		out.Charge = true
		out.ChargeTotal = offer.Apply(c.Total())
		if offer.Percentage > 0 {
			out.Response = fmt.Sprintf("%sWith %d%% off, your total for %d item%s is $%.2f. Processing your payment now.",
				empathy[state], offer.Percentage, c.Items(), plural(c.Items()), out.ChargeTotal)
		} else {
			out.Response = fmt.Sprintf("Your total for %d item%s is $%.2f. Processing your payment now.",
				c.Items(), plural(c.Items()), out.ChargeTotal)
		}

	default:
		out.Response = "Sorry, I didn't catch that. You can browse, add items, check your cart, or check out."
	}

	return out
}

func browseReply(category string, cat *catalog.Catalog) string {
	if category == "" {
		return "We have " + strings.Join(cat.Categories(), ", ") + ". Which would you like to see?"
	}
	products := cat.ByCategory(category)
	parts := make([]string, 0, len(products))
	for _, p := range products {
		parts = append(parts, fmt.Sprintf("%s for $%.2f", p.Name, p.Price))
	}
	return fmt.Sprintf("In %s we have %s.", category, strings.Join(parts, ", "))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
