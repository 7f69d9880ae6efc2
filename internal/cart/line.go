package cart

import (
	"sort"
	"strconv"
	"strings"
)

const defaultSpecKey = "default"

// Product is the subset of a menu product needed to add it to the cart.
type Product struct {
	ID         int64
	Name       string
	PriceMinor int64
}

// Line is one cart entry: a product with a normalized specification selection.
type Line struct {
	LineID         string
	ProductID      int64
	Name           string
	UnitPriceMinor int64
	Quantity       int
	SelectedSpec   map[string]string
}

// TotalMinor is the line's unit price times its quantity.
func (l Line) TotalMinor() int64 {
	return l.UnitPriceMinor * int64(l.Quantity)
}

func (l Line) clone() Line {
	l.SelectedSpec = copySpec(l.SelectedSpec)
	return l
}

// LineID derives the stable cart line identifier for a product and spec
// selection. Spec keys are sorted so selection order never matters.
func LineID(productID int64, spec map[string]string) string {
	prefix := strconv.FormatInt(productID, 10) + "::"
	if len(spec) == 0 {
		return prefix + defaultSpecKey
	}

	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+spec[k])
	}
	return prefix + strings.Join(parts, "|")
}

func copySpec(spec map[string]string) map[string]string {
	if len(spec) == 0 {
		return nil
	}
	out := make(map[string]string, len(spec))
	for k, v := range spec {
		out[k] = v
	}
	return out
}
