// Package cart holds the shopping cart value type. All operations are
// pure: they return a new cart and never touch the receiver, which
// keeps the command router free of hidden state.
package cart

import (
	"fmt"
	"strings"

	"shopvoice/internal/catalog"
)

// Line is one cart entry. UnitPrice is snapshotted at add time.
type Line struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type Cart struct {
	Lines []Line `json:"lines"`
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Add returns the cart with the product added, incrementing the
// quantity when the product is already present.
func (c Cart) Add(p catalog.Product) Cart {
	lines := append([]Line(nil), c.Lines...)
	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity++
			return Cart{Lines: lines}
		}
	}
	lines = append(lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
	})
	return Cart{Lines: lines}
}

func (c Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

func (c Cart) Items() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Summary renders the cart for a spoken reply, e.g.
// "2 x Wireless Earbuds, 1 x Travel Mug".
func (c Cart) Summary() string {
	parts := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		parts = append(parts, fmt.Sprintf("%d x %s", l.Quantity, l.Name))
	}
	return strings.Join(parts, ", ")
}
