// Package cart aggregates the products a shopper intends to buy.
//
// A Cart is not safe for concurrent use; Store serializes access to the
// carts it hands out.
package cart

import (
	"github.com/shopspring/decimal"

	"vendicraft/internal/models"
)

// Line is one product entry in a cart. Product is a copy taken when the
// line was created, not a live reference to the catalog.
type Line struct {
	Product      models.Product `json:"product"`
	Quantity     int            `json:"quantity"`
	SelectedSize string         `json:"selected_size,omitempty"`
}

// Subtotal returns price × quantity.
func (l Line) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per product ID, in insertion order.
type Cart struct {
	lines []Line
	index map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// AddItem adds one unit of product. If the product is already in the cart
// its quantity is incremented and its selected size replaced by size.
//
// Open question: lines are keyed by product ID only, so re-adding the same
// product with a different size overwrites the size instead of creating a
// second line. Kept until the intended behavior is settled.
func (c *Cart) AddItem(product models.Product, size string) {
	if i, ok := c.index[product.ID]; ok {
		c.lines[i].Quantity++
		c.lines[i].SelectedSize = size
		return
	}
	if product.Sizes != nil {
		product.Sizes = append([]string(nil), product.Sizes...)
	}
	c.index[product.ID] = len(c.lines)
	c.lines = append(c.lines, Line{Product: product, Quantity: 1, SelectedSize: size})
}

// SetQuantity replaces the quantity of the line for productID. A quantity
// of zero or less removes the line. Unknown IDs are ignored.
func (c *Cart) SetQuantity(productID string, quantity int) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	c.lines[i].Quantity = quantity
}

// RemoveItem drops the line for productID if present.
func (c *Cart) RemoveItem(productID string) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].Product.ID] = j
	}
}

// Total returns the exact sum of price × quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount returns the sum of quantities, as shown on the cart badge.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// Line returns the line for productID.
func (c *Cart) Line(productID string) (Line, bool) {
	i, ok := c.index[productID]
	if !ok {
		return Line{}, false
	}
	return c.lines[i], true
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]int)
}
