package services

import (
	"math"
	"sort"

	apperrors "wholesale-service/common/errors"
	"wholesale-service/models"
)

// ValidateSizeQuantities checks that every item with a submitted breakdown has
// at least quantity*5 pieces. A nil or empty map skips validation.
func ValidateSizeQuantities(items []models.LineItem, sizeQuantities models.SizeQuantities) *apperrors.Error {
	if len(sizeQuantities) == 0 {
		return nil
	}

	for i, item := range items {
		sizes, ok := sizeQuantities[LineItemKey(item.ProductID, i)]
		if !ok {
			continue
		}

		for _, size := range sortedSizes(sizes) {
			if sizes[size] < 0 {
				return apperrors.Validationf("Size quantities for %s cannot be negative (size %s: %d)",
					itemLabel(item), size, sizes[size])
			}
			if sizes[size] > models.MaxPiecesPerSize {
				return apperrors.Validationf("Size quantities for %s cannot exceed %d pieces per size (size %s: %d)",
					itemLabel(item), models.MaxPiecesPerSize, size, sizes[size])
			}
		}

		expected := item.Quantity * models.PiecesPerSet
		if total := sizes.Total(); total < expected {
			return apperrors.Validationf("Size quantities for %s must total at least %d pieces (currently %d)",
				itemLabel(item), expected, total)
		}
	}
	return nil
}

// RecalculateLineItem derives an item's totals from a size breakdown.
// Partial sets are dropped: 17 pieces are 3 sets.
func RecalculateLineItem(item models.LineItem, sizes models.SizeBreakdown) models.LineItem {
	totalPcs := sizes.Total()
	totalSets := totalPcs / models.PiecesPerSet

	item.SizeQuantities = sizes.Clone()
	item.TotalPcs = totalPcs
	item.TotalSets = totalSets
	item.Quantity = totalSets
	item.TotalAmount = float64(totalSets) * item.PricePerSet
	return item
}

// RecalculateLineItems returns a new slice where every item with a breakdown
// in sizeQuantities is recalculated. Other items are copied unchanged and keys
// that match no item are ignored.
func RecalculateLineItems(items []models.LineItem, sizeQuantities models.SizeQuantities) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, item := range items {
		if sizes, ok := sizeQuantities[LineItemKey(item.ProductID, i)]; ok {
			out[i] = RecalculateLineItem(item, sizes)
			continue
		}
		out[i] = item
	}
	return out
}

// SummarizeOrder totals an order's items and applies GST when applicable.
func SummarizeOrder(items []models.LineItem, gstApplicable bool, gstRate float64) models.OrderSummary {
	summary := models.OrderSummary{IsGSTApplicable: gstApplicable}
	styles := make(map[string]struct{}, len(items))

	for _, item := range items {
		summary.TotalPcs += item.TotalPcs
		summary.TotalSets += item.TotalSets
		summary.AmountBeforeTax += item.TotalAmount
		styles[item.ItemCode] = struct{}{}
	}
	summary.TotalStyles = len(styles)
	summary.AmountBeforeTax = roundMoney(summary.AmountBeforeTax)

	if gstApplicable {
		summary.TaxAmount = roundMoney(summary.AmountBeforeTax * gstRate)
	}
	summary.AmountAfterTax = roundMoney(summary.AmountBeforeTax + summary.TaxAmount)
	return summary
}

// DefaultSizeBreakdown spreads sets evenly: one piece of each size per set.
func DefaultSizeBreakdown(sets int) models.SizeBreakdown {
	b := make(models.SizeBreakdown, len(models.Sizes))
	for _, size := range models.Sizes {
		b[size] = sets
	}
	return b
}

func itemLabel(item models.LineItem) string {
	switch {
	case item.ItemName != "" && item.ItemCode != "":
		return item.ItemName + " (" + item.ItemCode + ")"
	case item.ItemCode != "":
		return item.ItemCode
	default:
		return item.ItemName
	}
}

func sortedSizes(b models.SizeBreakdown) []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
