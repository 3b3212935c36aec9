package pos

import "github.com/shopspring/decimal"

// Cart maps item IDs to pending stock-removal lines. An item never has more
// than one line: repeated adds merge by summing quantities. Insertion order
// is kept so lines display in the order the operator added them.
type Cart struct {
	lines map[string]*CartLine
	order []string
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{lines: make(map[string]*CartLine)}
}

// Add places quantity units of item into the cart. Quantities below 1 fail
// with ErrInvalidQuantity and leave the cart unchanged. Adding an item that
// is already in the cart sums the new quantity onto the existing line.
func (c *Cart) Add(item Item, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if line, ok := c.lines[item.ID]; ok {
		line.Quantity += quantity
		return nil
	}
	c.lines[item.ID] = &CartLine{
		ItemID:    item.ID,
		Code:      item.Code,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  quantity,
	}
	c.order = append(c.order, item.ID)
	return nil
}

// SetQuantity edits an existing line in place, clamping requests below 1 up
// to 1. Editing a line that does not exist is a no-op.
func (c *Cart) SetQuantity(itemID string, quantity int) {
	line, ok := c.lines[itemID]
	if !ok {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	line.Quantity = quantity
}

// Remove deletes the line for itemID. Removing an absent line is a no-op.
func (c *Cart) Remove(itemID string) {
	if _, ok := c.lines[itemID]; !ok {
		return
	}
	delete(c.lines, itemID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Line returns the line for itemID, or false when absent.
func (c *Cart) Line(itemID string) (CartLine, bool) {
	line, ok := c.lines[itemID]
	if !ok {
		return CartLine{}, false
	}
	return *line, true
}

// Lines returns copies of all lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// LineCount returns the number of lines.
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// Total sums unit price times quantity over all lines, using the price
// snapshots captured at add time.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Total())
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = make(map[string]*CartLine)
	c.order = nil
}
