package cart_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shopvoice/internal/cart"
	"shopvoice/internal/catalog"
)

var earbuds = catalog.Product{ID: 1, Name: "Wireless Earbuds", Price: 49.99}
var mug = catalog.Product{ID: 5, Name: "Travel Mug", Price: 19.99}

func TestAddSnapshotsPrice(t *testing.T) {
	c := cart.Cart{}.Add(earbuds)

	require.Len(t, c.Lines, 1)
	require.Equal(t, 1, c.Lines[0].ProductID)
	require.Equal(t, 49.99, c.Lines[0].UnitPrice)
	require.Equal(t, 1, c.Lines[0].Quantity)
}

func TestAddSameProductIncrements(t *testing.T) {
	c := cart.Cart{}.Add(earbuds).Add(earbuds)

	require.Len(t, c.Lines, 1)
	require.Equal(t, 2, c.Lines[0].Quantity)
}

func TestAddDoesNotMutateReceiver(t *testing.T) {
	base := cart.Cart{}.Add(earbuds)
	_ = base.Add(mug)
	_ = base.Add(earbuds)

	require.Len(t, base.Lines, 1)
	require.Equal(t, 1, base.Lines[0].Quantity)
}

func TestTotalAndSummary(t *testing.T) {
	c := cart.Cart{}.Add(earbuds).Add(earbuds).Add(mug)

	require.InDelta(t, 119.97, c.Total(), 0.001)
	require.Equal(t, 3, c.Items())
	require.Equal(t, "2 x Wireless Earbuds, 1 x Travel Mug", c.Summary())
}
