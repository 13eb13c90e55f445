package services

import "wholesale-service/models"

// ProjectPurchaseOrder sums an order's items into purchase-order totals.
// Styles are distinct item codes; sets, pieces and amount are plain sums.
func ProjectPurchaseOrder(items []models.LineItem) models.POSummary {
	var summary models.POSummary
	codes := make(map[string]struct{}, len(items))

	for _, item := range items {
		codes[item.ItemCode] = struct{}{}
		summary.TotalSets += item.TotalSets
		summary.TotalPcs += item.TotalPcs
		summary.TotalAmount += item.TotalAmount
	}
	summary.TotalStyles = len(codes)
	summary.TotalAmount = roundMoney(summary.TotalAmount)
	summary.AmountAfterTax = summary.TotalAmount
	return summary
}

// ApplyTax adds tax at rate to a projected summary.
func ApplyTax(summary models.POSummary, rate float64) models.POSummary {
	summary.TaxAmount = roundMoney(summary.TotalAmount * rate)
	summary.AmountAfterTax = roundMoney(summary.TotalAmount + summary.TaxAmount)
	return summary
}
