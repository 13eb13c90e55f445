package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseOrderStatus only moves forward: generated, sent, acknowledged.
type PurchaseOrderStatus string

const (
	POStatusGenerated    PurchaseOrderStatus = "generated"
	POStatusSent         PurchaseOrderStatus = "sent"
	POStatusAcknowledged PurchaseOrderStatus = "acknowledged"
)

// Next returns the status that may follow s, or "" when s is terminal.
func (s PurchaseOrderStatus) Next() PurchaseOrderStatus {
	switch s {
	case POStatusGenerated:
		return POStatusSent
	case POStatusSent:
		return POStatusAcknowledged
	}
	return ""
}

// POSummary is the projection of an order's items onto a purchase order.
type POSummary struct {
	TotalStyles    int     `json:"totalStyles" bson:"totalStyles"`
	TotalSets      int     `json:"totalSets" bson:"totalSets"`
	TotalPcs       int     `json:"totalPcs" bson:"totalPcs"`
	TotalAmount    float64 `json:"totalAmount" bson:"totalAmount"`
	TaxAmount      float64 `json:"taxAmount" bson:"taxAmount"`
	AmountAfterTax float64 `json:"amountAfterTax" bson:"amountAfterTax"`
}

type PurchaseOrder struct {
	ID             primitive.ObjectID  `json:"_id,omitempty" bson:"_id,omitempty"`
	PONumber       string              `json:"poNumber" bson:"poNumber"`
	OrderID        primitive.ObjectID  `json:"orderId" bson:"orderId"`
	OrderNumber    string              `json:"orderNumber" bson:"orderNumber"`
	Status         PurchaseOrderStatus `json:"status" bson:"status"`
	Retailer       RetailerSnapshot    `json:"retailer" bson:"retailer"`
	Items          []LineItem          `json:"items" bson:"items"`
	Summary        POSummary           `json:"summary" bson:"summary"`
	DocumentKey    string              `json:"documentKey,omitempty" bson:"documentKey,omitempty"`
	GeneratedAt    time.Time           `json:"generatedAt" bson:"generatedAt"`
	SentAt         *time.Time          `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	AcknowledgedAt *time.Time          `json:"acknowledgedAt,omitempty" bson:"acknowledgedAt,omitempty"`
}

type UpdatePOStatusRequest struct {
	Status PurchaseOrderStatus `json:"status" binding:"required,oneof=generated sent acknowledged"`
}

// PODocumentResponse is returned by GET /admin/purchase-orders/:id/document.
type PODocumentResponse struct {
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	HTML      string    `json:"-"`
}
