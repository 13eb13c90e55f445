package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of a wholesale order.
type OrderStatus string

const (
	OrderStatusSubmitted        OrderStatus = "submitted"
	OrderStatusApproved         OrderStatus = "approved"
	OrderStatusChangesRequested OrderStatus = "changes_requested"
	OrderStatusRejected         OrderStatus = "rejected"
	OrderStatusPOGenerated      OrderStatus = "po_generated"
)

// Reviewable reports whether an admin review may be recorded from this status.
func (s OrderStatus) Reviewable() bool {
	switch s {
	case OrderStatusSubmitted, OrderStatusChangesRequested, OrderStatusApproved:
		return true
	}
	return false
}

// ReviewAction is the admin decision recorded on an order.
type ReviewAction string

const (
	ReviewActionApprove        ReviewAction = "approve"
	ReviewActionRequestChanges ReviewAction = "request_changes"
	ReviewActionReject         ReviewAction = "reject"
)

// Sizes every garment set is made of, one piece each.
var Sizes = []string{"S", "M", "L", "XL", "XXL"}

// PiecesPerSet is the number of garments in one set.
const PiecesPerSet = 5

// MaxPiecesPerSize caps a single size count so a breakdown total cannot overflow.
const MaxPiecesPerSize = math.MaxInt32

// SizeBreakdown maps a size label to a piece count.
type SizeBreakdown map[string]int

// Total sums all piece counts.
func (b SizeBreakdown) Total() int {
	total := 0
	for _, n := range b {
		total += n
	}
	return total
}

// Clone returns an independent copy of b.
func (b SizeBreakdown) Clone() SizeBreakdown {
	if b == nil {
		return nil
	}
	out := make(SizeBreakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// SizeQuantities maps a line-item key to that item's size breakdown.
type SizeQuantities map[string]SizeBreakdown

type Address struct {
	Line1   string `json:"line1" bson:"line1"`
	Line2   string `json:"line2,omitempty" bson:"line2,omitempty"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Pincode string `json:"pincode" bson:"pincode"`
}

// RetailerSnapshot is the retailer as it was when the order was placed.
type RetailerSnapshot struct {
	RetailerID    primitive.ObjectID `json:"retailerId" bson:"retailerId"`
	BusinessName  string             `json:"businessName" bson:"businessName"`
	ContactPerson string             `json:"contactPerson" bson:"contactPerson"`
	Phone         string             `json:"phone" bson:"phone"`
	Email         string             `json:"email,omitempty" bson:"email,omitempty"`
	GSTIN         string             `json:"gstin,omitempty" bson:"gstin,omitempty"`
	Address       Address            `json:"address" bson:"address"`
}

// LineItem is one product row of an order.
type LineItem struct {
	ProductID      ProductRef    `json:"productId" bson:"productId"`
	ItemCode       string        `json:"itemCode" bson:"itemCode"`
	ItemName       string        `json:"itemName" bson:"itemName"`
	Color          string        `json:"color,omitempty" bson:"color,omitempty"`
	Fabric         string        `json:"fabric,omitempty" bson:"fabric,omitempty"`
	PricePerPiece  float64       `json:"pricePerPiece" bson:"pricePerPiece"`
	PricePerSet    float64       `json:"pricePerSet" bson:"pricePerSet"`
	Quantity       int           `json:"quantity" bson:"quantity"`
	TotalSets      int           `json:"totalSets" bson:"totalSets"`
	TotalPcs       int           `json:"totalPcs" bson:"totalPcs"`
	TotalAmount    float64       `json:"totalAmount" bson:"totalAmount"`
	SizeQuantities SizeBreakdown `json:"sizeQuantities,omitempty" bson:"sizeQuantities,omitempty"`
}

type OrderSummary struct {
	TotalPcs        int     `json:"totalPcs" bson:"totalPcs"`
	TotalSets       int     `json:"totalSets" bson:"totalSets"`
	TotalStyles     int     `json:"totalStyles" bson:"totalStyles"`
	AmountBeforeTax float64 `json:"amountBeforeTax" bson:"amountBeforeTax"`
	TaxAmount       float64 `json:"taxAmount" bson:"taxAmount"`
	AmountAfterTax  float64 `json:"amountAfterTax" bson:"amountAfterTax"`
	IsGSTApplicable bool    `json:"isGSTApplicable" bson:"isGstApplicable"`
}

// ReviewHistoryEntry is appended once per review and never rewritten.
type ReviewHistoryEntry struct {
	Action         ReviewAction   `json:"action" bson:"action"`
	Notes          string         `json:"notes" bson:"notes"`
	Timestamp      time.Time      `json:"timestamp" bson:"timestamp"`
	PreviousStatus OrderStatus    `json:"previousStatus" bson:"previousStatus"`
	NewStatus      OrderStatus    `json:"newStatus" bson:"newStatus"`
	SizeQuantities SizeQuantities `json:"sizeQuantities" bson:"sizeQuantities"`
	ReviewedBy     string         `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
}

// Order is a retailer's wholesale order stored in the orders collection.
type Order struct {
	ID             primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	OrderNumber    string               `json:"orderNumber" bson:"orderNumber"`
	Status         OrderStatus          `json:"status" bson:"status"`
	CatalogID      primitive.ObjectID   `json:"catalogId" bson:"catalogId"`
	Retailer       RetailerSnapshot     `json:"retailer" bson:"retailer"`
	Items          []LineItem           `json:"items" bson:"items"`
	Summary        OrderSummary         `json:"summary" bson:"summary"`
	SizeQuantities SizeQuantities       `json:"sizeQuantities,omitempty" bson:"sizeQuantities,omitempty"`
	Notes          string               `json:"notes,omitempty" bson:"notes,omitempty"`
	ReviewHistory  []ReviewHistoryEntry `json:"reviewHistory" bson:"reviewHistory"`
	ReviewedAt     *time.Time           `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
	Version        int64                `json:"version" bson:"version"`
}

// ReviewRequest is the admin payload for POST /admin/orders/:id/review.
type ReviewRequest struct {
	Action         ReviewAction   `json:"action" binding:"required,oneof=approve request_changes reject"`
	NewStatus      OrderStatus    `json:"newStatus,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	SizeQuantities SizeQuantities `json:"sizeQuantities,omitempty"`
}

// ReviewChange is what a review writes, applied by the repository as one
// version-guarded update.
type ReviewChange struct {
	Status         OrderStatus
	Notes          string
	Items          []LineItem
	Summary        OrderSummary
	SizeQuantities SizeQuantities
	Entry          ReviewHistoryEntry
	ReviewedAt     time.Time
}

// SubmitOrderItem is one requested product in a storefront order.
type SubmitOrderItem struct {
	ProductID  ProductRef `json:"productId"`
	Sets       int        `json:"sets" validate:"required,gte=1,lte=10000"`
	Pieces     int        `json:"pieces,omitempty" validate:"gte=0"`
	TotalPrice float64    `json:"totalPrice,omitempty" validate:"gte=0"`
}

// SubmitOrderRequest is the storefront payload for POST /orders.
type SubmitOrderRequest struct {
	CatalogID       string            `json:"catalogId" validate:"required,len=24,hexadecimal"`
	RetailerPhone   string            `json:"retailerPhone" validate:"required,min=10,max=15"`
	Items           []SubmitOrderItem `json:"items" validate:"required,min=1,dive"`
	Summary         *OrderSummary     `json:"summary,omitempty"`
	IsGSTApplicable bool              `json:"isGSTApplicable"`
	Notes           string            `json:"notes,omitempty" validate:"max=2000"`
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status OrderStatus
	Phone  string
}
