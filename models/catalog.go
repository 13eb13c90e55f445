package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is read from the shared products collection.
type Product struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ItemCode      string             `json:"itemCode" bson:"itemCode"`
	Name          string             `json:"name" bson:"name"`
	Color         string             `json:"color,omitempty" bson:"color,omitempty"`
	Fabric        string             `json:"fabric,omitempty" bson:"fabric,omitempty"`
	PricePerPiece float64            `json:"pricePerPiece" bson:"pricePerPiece"`
	PricePerSet   float64            `json:"pricePerSet" bson:"pricePerSet"`
	Images        []string           `json:"images" bson:"images"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
}

type Retailer struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	BusinessName  string             `json:"businessName" bson:"businessName"`
	ContactPerson string             `json:"contactPerson" bson:"contactPerson"`
	Phone         string             `json:"phone" bson:"phone"`
	Email         string             `json:"email,omitempty" bson:"email,omitempty"`
	GSTIN         string             `json:"gstin,omitempty" bson:"gstin,omitempty"`
	Address       Address            `json:"address" bson:"address"`
	Priority      string             `json:"priority" bson:"priority"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
}

// Snapshot copies the fields an order keeps about its retailer.
func (r *Retailer) Snapshot() RetailerSnapshot {
	return RetailerSnapshot{
		RetailerID:    r.ID,
		BusinessName:  r.BusinessName,
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
		Email:         r.Email,
		GSTIN:         r.GSTIN,
		Address:       r.Address,
	}
}

// Priority is a retailer tier such as R1 with its price discount.
type Priority struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	DiscountPercent float64            `json:"discountPercent" bson:"discountPercent"`
}

type Catalog struct {
	ID                primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	Name              string               `json:"name" bson:"name"`
	ProductIDs        []primitive.ObjectID `json:"productIds" bson:"productIds"`
	AllowedPriorities []string             `json:"allowedPriorities" bson:"allowedPriorities"`
	IsActive          bool                 `json:"isActive" bson:"isActive"`
}

// Admits reports whether a retailer of the given priority may order from c.
// An empty allow-list opens the catalog to every tier.
func (c *Catalog) Admits(priority string) bool {
	if len(c.AllowedPriorities) == 0 {
		return true
	}
	for _, p := range c.AllowedPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

// Contains reports whether the catalog lists the product.
func (c *Catalog) Contains(productID primitive.ObjectID) bool {
	if len(c.ProductIDs) == 0 {
		return true
	}
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// CatalogAccessResponse answers GET /catalogs/:id/access.
type CatalogAccessResponse struct {
	Allowed         bool           `json:"allowed"`
	Catalog         CatalogSummary `json:"catalog"`
	Retailer        RetailerBrief  `json:"retailer"`
	DiscountPercent float64        `json:"discountPercent"`
}

type CatalogSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RetailerBrief struct {
	BusinessName string `json:"businessName"`
	Priority     string `json:"priority"`
}
