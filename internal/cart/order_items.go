package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

// ToOrderItems maps cart lines into the order-creation item format. The spec
// selection is serialized as a JSON object with sorted keys.
func ToOrderItems(lines []Line) ([]types.OrderItem, error) {
	items := make([]types.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := types.OrderItem{
			ProductID:      line.ProductID,
			Name:           line.Name,
			UnitPriceMinor: line.UnitPriceMinor,
			Count:          line.Quantity,
		}
		if len(line.SelectedSpec) > 0 {
			raw, err := json.Marshal(line.SelectedSpec)
			if err != nil {
				return nil, fmt.Errorf("marshal spec snapshot for %s: %w", line.LineID, err)
			}
			item.SpecSnapshot = string(raw)
		}
		items = append(items, item)
	}
	return items, nil
}

// FromOrderItems rebuilds cart lines from a past order's items ("order again").
func FromOrderItems(items []types.OrderItem) ([]Line, error) {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		var spec map[string]string
		if snapshot := strings.TrimSpace(item.SpecSnapshot); snapshot != "" {
			if err := json.Unmarshal([]byte(snapshot), &spec); err != nil {
				return nil, fmt.Errorf("parse spec snapshot for product %d: %w", item.ProductID, err)
			}
		}
		lines = append(lines, Line{
			LineID:         LineID(item.ProductID, spec),
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Count,
			SelectedSpec:   copySpec(spec),
		})
	}
	return lines, nil
}

// Reorder adds every line of a past order to the cart, merging duplicates.
func (c *Cart) Reorder(items []types.OrderItem) error {
	lines, err := FromOrderItems(items)
	if err != nil {
		return err
	}
	for _, line := range lines {
		product := Product{ID: line.ProductID, Name: line.Name, PriceMinor: line.UnitPriceMinor}
		if _, err := c.AddLine(product, line.Quantity, line.SelectedSpec); err != nil {
			return fmt.Errorf("reorder product %d: %w", line.ProductID, err)
		}
	}
	return nil
}
