package services

import (
	"strconv"

	"wholesale-service/models"
)

// ResolveProductID turns a product reference into the id text used in
// line-item keys. It never fails; unknown shapes fall back to their raw text.
func ResolveProductID(ref models.ProductRef) string {
	switch ref.Kind() {
	case models.ProductRefRawString:
		return ref.RawString()
	case models.ProductRefObjectWithID:
		return ref.PopulatedID()
	case models.ProductRefStringConvertible:
		return ref.ObjectID().Hex()
	default:
		return ref.Opaque()
	}
}

// LineItemKey is the key an item's size breakdown is stored under in an
// order's sizeQuantities map: "<productId>-<index>".
func LineItemKey(ref models.ProductRef, index int) string {
	return ResolveProductID(ref) + "-" + strconv.Itoa(index)
}
