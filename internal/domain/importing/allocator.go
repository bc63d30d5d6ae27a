// internal/domain/importing/allocator.go
package importing

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks malformed or zero-valued cost-allocation inputs.
// The caller must fix the shipment data and resubmit; nothing is written.
var ErrInvalidInput = errors.New("invalid import input")

// AllocationItem is one shipment line fed into the allocator. ProfitMargin is
// the percentage read from the current StockItem record, not from the
// shipment.
type AllocationItem struct {
	StockItemID      uint
	QuantityOrdered  int
	ForeignUnitPrice float64
	ProfitMargin     float64
}

// AllocationInput carries everything the allocator needs, injected explicitly
// so the math can be tested without a database.
type AllocationInput struct {
	Items            []AllocationItem
	ForeignOverheads map[string]float64
	LocalOverheads   map[string]float64
	ExchangeRate     float64
}

// AllocatedItem is one shipment line with its apportioned landed cost
type AllocatedItem struct {
	StockItemID       uint
	QuantityOrdered   int
	ForeignUnitPrice  float64
	Share             float64
	OverheadAllocated float64
	FinalLineLocal    float64
	FinalUnitLocal    float64
	SellingPrice      float64
}

// AllocationResult is the full cost computation for one shipment
type AllocationResult struct {
	TotalForeignValue        float64
	TotalForeignOverhead     float64
	TotalLocalOverhead       float64
	GrandTotalLocal          float64
	AllocatableLocalOverhead float64
	Items                    []AllocatedItem
}

// Allocate apportions the shipment's total landed cost across line items
// proportionally to each item's share of pre-overhead value:
//
//	grandTotalLocal = (itemValue + foreignOverhead) × rate + localOverhead
//	share_i         = lineValue_i / itemValue
//	finalLine_i     = lineValue_i × rate + (grandTotalLocal − itemValue × rate) × share_i
//
// and derives each item's new selling price from its profit margin.
func Allocate(in AllocationInput) (*AllocationResult, error) {
	if in.ExchangeRate <= 0 {
		return nil, fmt.Errorf("%w: exchange rate must be greater than zero", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: shipment has no line items", ErrInvalidInput)
	}

	var totalForeignValue float64
	for _, item := range in.Items {
		if item.QuantityOrdered <= 0 {
			return nil, fmt.Errorf("%w: item %d has non-positive quantity", ErrInvalidInput, item.StockItemID)
		}
		if item.ForeignUnitPrice < 0 {
			return nil, fmt.Errorf("%w: item %d has negative unit price", ErrInvalidInput, item.StockItemID)
		}
		totalForeignValue += float64(item.QuantityOrdered) * item.ForeignUnitPrice
	}

	// Proportional allocation needs a non-zero base.
	if totalForeignValue == 0 {
		return nil, fmt.Errorf("%w: total foreign item value is zero", ErrInvalidInput)
	}

	var totalForeignOverhead float64
	for name, amount := range in.ForeignOverheads {
		if amount < 0 {
			return nil, fmt.Errorf("%w: foreign overhead '%s' is negative", ErrInvalidInput, name)
		}
		totalForeignOverhead += amount
	}

	var totalLocalOverhead float64
	for name, amount := range in.LocalOverheads {
		if amount < 0 {
			return nil, fmt.Errorf("%w: local overhead '%s' is negative", ErrInvalidInput, name)
		}
		totalLocalOverhead += amount
	}

	grandTotalLocal := (totalForeignValue+totalForeignOverhead)*in.ExchangeRate + totalLocalOverhead
	allocatable := grandTotalLocal - totalForeignValue*in.ExchangeRate

	result := &AllocationResult{
		TotalForeignValue:        totalForeignValue,
		TotalForeignOverhead:     totalForeignOverhead,
		TotalLocalOverhead:       totalLocalOverhead,
		GrandTotalLocal:          grandTotalLocal,
		AllocatableLocalOverhead: allocatable,
		Items:                    make([]AllocatedItem, 0, len(in.Items)),
	}

	for _, item := range in.Items {
		lineValue := float64(item.QuantityOrdered) * item.ForeignUnitPrice
		share := lineValue / totalForeignValue
		overhead := allocatable * share
		finalLine := lineValue*in.ExchangeRate + overhead
		finalUnit := finalLine / float64(item.QuantityOrdered)

		result.Items = append(result.Items, AllocatedItem{
			StockItemID:       item.StockItemID,
			QuantityOrdered:   item.QuantityOrdered,
			ForeignUnitPrice:  item.ForeignUnitPrice,
			Share:             share,
			OverheadAllocated: overhead,
			FinalLineLocal:    finalLine,
			FinalUnitLocal:    finalUnit,
			SellingPrice:      finalUnit * (1 + item.ProfitMargin/100),
		})
	}

	return result, nil
}
