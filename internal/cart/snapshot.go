package cart

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the cart as its list of lines.
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Lines())
}

// UnmarshalJSON rebuilds a cart from a list of lines. Lines with a
// non-positive quantity are dropped; duplicate product IDs collapse into
// the first line with their quantities summed.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	c.Clear()
	for _, l := range lines {
		if l.Product.ID == "" {
			return fmt.Errorf("failed to decode cart snapshot: line without product ID")
		}
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := c.index[l.Product.ID]; ok {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.index[l.Product.ID] = len(c.lines)
		c.lines = append(c.lines, l)
	}
	return nil
}
