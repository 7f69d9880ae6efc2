package cart

import (
	"math"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestLineIDIsOrderIndependent(t *testing.T) {
	t.Parallel()

	a := LineID(7, map[string]string{"size": "L", "ice": "less"})
	b := LineID(7, map[string]string{"ice": "less", "size": "L"})
	require.Equal(t, a, b)
	require.Equal(t, "7::ice:less|size:L", a)
	require.Equal(t, "7::default", LineID(7, nil))
	require.NotEqual(t, LineID(7, map[string]string{"size": "M"}), LineID(7, map[string]string{"size": "L"}))
}

func TestAddLineMergesSameSelection(t *testing.T) {
	t.Parallel()

	c := New()
	latte := Product{ID: 1, Name: "Latte", PriceMinor: 1800}

	_, err := c.AddLine(latte, 1, map[string]string{"size": "L", "milk": "oat"})
	require.NoError(t, err)
	line, err := c.AddLine(latte, 2, map[string]string{"milk": "oat", "size": "L"})
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	require.Equal(t, 3, line.Quantity)
	require.Equal(t, 3, c.Count())
	require.Equal(t, int64(5400), c.Subtotal())
}

func TestAddLineSeparatesDifferentSelections(t *testing.T) {
	t.Parallel()

	c := New()
	latte := Product{ID: 1, Name: "Latte", PriceMinor: 1800}

	_, err := c.AddLine(latte, 1, map[string]string{"size": "M"})
	require.NoError(t, err)
	_, err = c.AddLine(latte, 1, map[string]string{"size": "L"})
	require.NoError(t, err)
	_, err = c.AddLine(Product{ID: 2, Name: "Bagel", PriceMinor: 900}, 2, nil)
	require.NoError(t, err)

	require.Equal(t, 3, c.Len())
	require.Equal(t, 4, c.Count())
	require.Equal(t, int64(1800+1800+1800), c.Subtotal())
}

func TestAddLineRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.AddLine(Product{ID: 1, PriceMinor: 100}, 0, nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = c.AddLine(Product{ID: 0, PriceMinor: 100}, 1, nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = c.AddLine(Product{ID: 1, PriceMinor: -1}, 1, nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	require.Zero(t, c.Len())
}

func TestAddLineRejectsOverflowingTotals(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.AddLine(Product{ID: 1, Name: "Gold", PriceMinor: math.MaxInt64 / 2}, 3, nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	require.Zero(t, c.Len())

	_, err = c.AddLine(Product{ID: 1, Name: "Gold", PriceMinor: math.MaxInt64 / 2}, 1, nil)
	require.NoError(t, err)

	// merging pushes the quantity past the limit
	_, err = c.AddLine(Product{ID: 1, Name: "Gold", PriceMinor: math.MaxInt64 / 2}, 2, nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// a second line would push the subtotal past the limit
	_, err = c.AddLine(Product{ID: 2, Name: "Silver", PriceMinor: math.MaxInt64/2 + 2}, 1, nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	require.Equal(t, 1, c.Len())
	require.Equal(t, 1, c.Count())
	require.Equal(t, int64(math.MaxInt64/2), c.Subtotal())
	require.Positive(t, c.Subtotal())
}

func TestRemoveLineAndClear(t *testing.T) {
	t.Parallel()

	c := New()
	first, err := c.AddLine(Product{ID: 1, PriceMinor: 500}, 1, nil)
	require.NoError(t, err)
	_, err = c.AddLine(Product{ID: 2, PriceMinor: 700}, 1, nil)
	require.NoError(t, err)

	c.RemoveLine("missing")
	require.Equal(t, 2, c.Len())

	c.RemoveLine(first.LineID)
	require.Equal(t, 1, c.Len())
	require.Equal(t, int64(700), c.Subtotal())

	c.Clear()
	require.Zero(t, c.Len())
	require.Zero(t, c.Subtotal())
	require.Zero(t, c.Count())
}

func TestLinesReturnsIndependentCopy(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.AddLine(Product{ID: 1, PriceMinor: 500}, 1, map[string]string{"size": "L"})
	require.NoError(t, err)

	lines := c.Lines()
	lines[0].Quantity = 99
	lines[0].SelectedSpec["size"] = "S"

	fresh := c.Lines()
	require.Equal(t, 1, fresh[0].Quantity)
	require.Equal(t, "L", fresh[0].SelectedSpec["size"])
}

func TestToOrderItemsSnapshotsSpec(t *testing.T) {
	t.Parallel()

	items, err := ToOrderItems([]Line{
		{LineID: "1::size:L", ProductID: 1, Name: "Latte", UnitPriceMinor: 1800, Quantity: 2, SelectedSpec: map[string]string{"size": "L", "ice": "none"}},
		{LineID: "2::default", ProductID: 2, Name: "Bagel", UnitPriceMinor: 900, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, `{"ice":"none","size":"L"}`, items[0].SpecSnapshot)
	require.Equal(t, 2, items[0].Count)
	require.Empty(t, items[1].SpecSnapshot)
}

func TestReorderRebuildsLines(t *testing.T) {
	t.Parallel()

	c := New()
	err := c.Reorder([]types.OrderItem{
		{ProductID: 1, Name: "Latte", UnitPriceMinor: 1800, Count: 1, SpecSnapshot: `{"size":"L"}`},
		{ProductID: 1, Name: "Latte", UnitPriceMinor: 1800, Count: 2, SpecSnapshot: `{"size":"L"}`},
		{ProductID: 2, Name: "Bagel", UnitPriceMinor: 900, Count: 1},
	})
	require.NoError(t, err)

	lines := c.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, "1::size:L", lines[0].LineID)
	require.Equal(t, 3, lines[0].Quantity)
	require.Equal(t, "2::default", lines[1].LineID)
}

func TestReorderRejectsBadSnapshot(t *testing.T) {
	t.Parallel()

	c := New()
	err := c.Reorder([]types.OrderItem{{ProductID: 1, Count: 1, SpecSnapshot: "not-json"}})
	require.Error(t, err)
	require.Zero(t, c.Len())
}
