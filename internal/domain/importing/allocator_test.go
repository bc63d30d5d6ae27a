// internal/domain/importing/allocator_test.go
package importing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	t.Run("overhead is apportioned by value share", func(t *testing.T) {
		// Two items with equal line values split the overheads evenly even
		// though their quantities differ.
		result, err := Allocate(AllocationInput{
			Items: []AllocationItem{
				{StockItemID: 1, QuantityOrdered: 10, ForeignUnitPrice: 5, ProfitMargin: 20},
				{StockItemID: 2, QuantityOrdered: 5, ForeignUnitPrice: 10, ProfitMargin: 30},
			},
			ForeignOverheads: map[string]float64{"freight": 20},
			LocalOverheads:   map[string]float64{"clearing": 1000},
			ExchangeRate:     300,
		})
		require.NoError(t, err)

		assert.InDelta(t, 100.0, result.TotalForeignValue, 1e-9)
		assert.InDelta(t, 37000.0, result.GrandTotalLocal, 1e-9)
		assert.InDelta(t, 7000.0, result.AllocatableLocalOverhead, 1e-9)

		require.Len(t, result.Items, 2)
		first, second := result.Items[0], result.Items[1]

		assert.InDelta(t, 0.5, first.Share, 1e-9)
		assert.InDelta(t, 0.5, second.Share, 1e-9)
		assert.InDelta(t, 3500.0, first.OverheadAllocated, 1e-9)
		assert.InDelta(t, 18500.0, first.FinalLineLocal, 1e-9)
		assert.InDelta(t, 1850.0, first.FinalUnitLocal, 1e-9)
		assert.InDelta(t, 3700.0, second.FinalUnitLocal, 1e-9)

		// Selling prices apply each item's own margin to the landed unit cost.
		assert.InDelta(t, 2220.0, first.SellingPrice, 1e-9)
		assert.InDelta(t, 4810.0, second.SellingPrice, 1e-9)
	})

	t.Run("line totals conserve the grand total", func(t *testing.T) {
		result, err := Allocate(AllocationInput{
			Items: []AllocationItem{
				{StockItemID: 1, QuantityOrdered: 7, ForeignUnitPrice: 13.37},
				{StockItemID: 2, QuantityOrdered: 3, ForeignUnitPrice: 99.95},
				{StockItemID: 3, QuantityOrdered: 40, ForeignUnitPrice: 2.5},
			},
			ForeignOverheads: map[string]float64{"freight": 180, "insurance": 42.75},
			LocalOverheads:   map[string]float64{"duty": 61500, "transport": 8000},
			ExchangeRate:     302.45,
		})
		require.NoError(t, err)

		var lineSum, shareSum float64
		for _, item := range result.Items {
			lineSum += item.FinalLineLocal
			shareSum += item.Share
		}
		assert.InDelta(t, result.GrandTotalLocal, lineSum, 1e-6)
		assert.InDelta(t, 1.0, shareSum, 1e-9)
	})

	t.Run("no overheads means converted value only", func(t *testing.T) {
		result, err := Allocate(AllocationInput{
			Items:        []AllocationItem{{StockItemID: 1, QuantityOrdered: 4, ForeignUnitPrice: 25}},
			ExchangeRate: 300,
		})
		require.NoError(t, err)
		assert.InDelta(t, 30000.0, result.GrandTotalLocal, 1e-9)
		assert.InDelta(t, 7500.0, result.Items[0].FinalUnitLocal, 1e-9)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		valid := []AllocationItem{{StockItemID: 1, QuantityOrdered: 1, ForeignUnitPrice: 10}}

		cases := []struct {
			name  string
			input AllocationInput
		}{
			{"zero exchange rate", AllocationInput{Items: valid, ExchangeRate: 0}},
			{"negative exchange rate", AllocationInput{Items: valid, ExchangeRate: -1}},
			{"no items", AllocationInput{ExchangeRate: 300}},
			{"non-positive quantity", AllocationInput{
				Items:        []AllocationItem{{StockItemID: 1, QuantityOrdered: 0, ForeignUnitPrice: 10}},
				ExchangeRate: 300,
			}},
			{"negative unit price", AllocationInput{
				Items:        []AllocationItem{{StockItemID: 1, QuantityOrdered: 1, ForeignUnitPrice: -5}},
				ExchangeRate: 300,
			}},
			{"zero value base", AllocationInput{
				Items:        []AllocationItem{{StockItemID: 1, QuantityOrdered: 5, ForeignUnitPrice: 0}},
				ExchangeRate: 300,
			}},
			{"negative foreign overhead", AllocationInput{
				Items:            valid,
				ForeignOverheads: map[string]float64{"freight": -10},
				ExchangeRate:     300,
			}},
			{"negative local overhead", AllocationInput{
				Items:          valid,
				LocalOverheads: map[string]float64{"duty": -10},
				ExchangeRate:   300,
			}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := Allocate(tc.input)
				require.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}
