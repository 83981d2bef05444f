package catalog

import (
	"encoding/json"
	"os"
	"strings"
)

// Product is supplied by the catalog collaborator and never mutated.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Catalog is a read-only product list. Lookups walk it in order, so
// the first catalog entry wins on ambiguous queries.
type Catalog struct {
	products []Product
}

func New(products []Product) *Catalog {
	return &Catalog{products: append([]Product(nil), products...)}
}

// LoadFile reads a JSON array of products.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, err
	}
	return New(products), nil
}

// Default is the built-in demo catalog used when no catalog file is
// configured.
func Default() *Catalog {
	return New([]Product{
		{ID: 1, Name: "Wireless Earbuds", Price: 49.99, Category: "electronics"},
		{ID: 2, Name: "Smart Watch", Price: 129.99, Category: "electronics"},
		{ID: 3, Name: "Phone Case", Price: 14.99, Category: "accessories"},
		{ID: 4, Name: "Bluetooth Speaker", Price: 39.99, Category: "electronics"},
		{ID: 5, Name: "Travel Mug", Price: 19.99, Category: "home"},
		{ID: 6, Name: "Yoga Mat", Price: 24.99, Category: "fitness"},
	})
}

func (c *Catalog) Products() []Product {
	return c.products
}

// Categories returns the distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// FindProduct matches a spoken query against product names: the full
// name as a substring of the query, or any name word of three or more
// letters opening a query token ("mug" matches "mugs"). The floor
// keeps one- and two-letter noise out while short names like "Mug"
// stay reachable; token matching keeps "mat" from hiding inside
// "what". First match in catalog order wins.
func (c *Catalog) FindProduct(query string) (Product, bool) {
	q := strings.ToLower(query)
	tokens := strings.FieldsFunc(q, func(r rune) bool {
		return r < 'a' || r > 'z'
	})

	for _, p := range c.products {
		name := strings.ToLower(p.Name)
		if strings.Contains(q, name) {
			return p, true
		}
		for _, w := range strings.Fields(name) {
			if len(w) < 3 {
				continue
			}
			for _, tok := range tokens {
				if strings.HasPrefix(tok, w) {
					return p, true
				}
			}
		}
	}
	return Product{}, false
}

// FindCategory returns the first catalog category mentioned in the
// query.
func (c *Catalog) FindCategory(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, cat := range c.Categories() {
		if strings.Contains(q, strings.ToLower(cat)) {
			return cat, true
		}
	}
	return "", false
}

// ByCategory lists the products of one category in catalog order.
func (c *Catalog) ByCategory(category string) []Product {
	var out []Product
	for _, p := range c.products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}
