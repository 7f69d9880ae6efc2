package cart

import (
	"math"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

// Cart owns the shopping-cart line list. It is safe for concurrent use.
type Cart struct {
	mu    sync.RWMutex
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddLine merges the product into an existing line with the same product and
// spec selection, or appends a new line.
func (c *Cart) AddLine(product Product, quantity int, selectedSpec map[string]string) (Line, error) {
	if quantity < 1 {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if product.ID <= 0 {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if product.PriceMinor < 0 {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}

	id := LineID(product.ID, selectedSpec)

	c.mu.Lock()
	defer c.mu.Unlock()

	existing := -1
	for i := range c.lines {
		if c.lines[i].LineID == id {
			existing = i
			break
		}
	}

	price, merged := product.PriceMinor, quantity
	if existing >= 0 {
		price = c.lines[existing].UnitPriceMinor
		if c.lines[existing].Quantity > math.MaxInt-quantity {
			return Line{}, errTotalTooLarge()
		}
		merged += c.lines[existing].Quantity
	}
	if err := c.checkTotalLocked(existing, price, merged); err != nil {
		return Line{}, err
	}

	if existing >= 0 {
		c.lines[existing].Quantity = merged
		return c.lines[existing].clone(), nil
	}

	line := Line{
		LineID:         id,
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceMinor: product.PriceMinor,
		Quantity:       quantity,
		SelectedSpec:   copySpec(selectedSpec),
	}
	c.lines = append(c.lines, line)
	return line.clone(), nil
}

// checkTotalLocked rejects a line whose total, or the resulting cart subtotal,
// would not fit in int64 minor units. skip is the index of the line being
// replaced, or -1.
func (c *Cart) checkTotalLocked(skip int, price int64, quantity int) error {
	if price > 0 && int64(quantity) > math.MaxInt64/price {
		return errTotalTooLarge()
	}
	lineTotal := price * int64(quantity)

	var rest int64
	for i, line := range c.lines {
		if i == skip {
			continue
		}
		rest += line.TotalMinor()
	}
	if rest > math.MaxInt64-lineTotal {
		return errTotalTooLarge()
	}
	return nil
}

func errTotalTooLarge() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "cart total exceeds the supported amount")
}

// RemoveLine drops the line with the given id. Unknown ids are ignored.
func (c *Cart) RemoveLine(lineID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].LineID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Subtotal sums unit price times quantity over every line.
func (c *Cart) Subtotal() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total int64
	for _, line := range c.lines {
		total += line.TotalMinor()
	}
	return total
}

// Count is the total number of units in the cart.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}

// Lines returns a deep copy of the current lines; later cart mutations do not
// affect the returned slice.
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Line, len(c.lines))
	for i, line := range c.lines {
		out[i] = line.clone()
	}
	return out
}
