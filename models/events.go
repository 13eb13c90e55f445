package models

import "time"

const (
	EventOrderSubmitted         = "order.submitted"
	EventOrderReviewed          = "order.reviewed"
	EventPurchaseOrderGenerated = "purchase_order.generated"
)

// OrderEvent is published to SNS when an order is submitted or reviewed.
type OrderEvent struct {
	EventType      string       `json:"event_type"`
	OrderID        string       `json:"order_id"`
	OrderNumber    string       `json:"order_number"`
	Status         OrderStatus  `json:"status"`
	PreviousStatus OrderStatus  `json:"previous_status,omitempty"`
	Action         ReviewAction `json:"action,omitempty"`
	RetailerPhone  string       `json:"retailer_phone"`
	TotalSets      int          `json:"total_sets"`
	AmountAfterTax float64      `json:"amount_after_tax"`
	ReviewedBy     string       `json:"reviewed_by,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

// PurchaseOrderEvent is published to SNS when a purchase order is generated.
type PurchaseOrderEvent struct {
	EventType      string    `json:"event_type"`
	PurchaseOrder  string    `json:"purchase_order_id"`
	PONumber       string    `json:"po_number"`
	OrderID        string    `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	TotalStyles    int       `json:"total_styles"`
	TotalSets      int       `json:"total_sets"`
	AmountAfterTax float64   `json:"amount_after_tax"`
	DocumentKey    string    `json:"document_key,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
