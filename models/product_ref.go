package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductRefKind tells which representation a product reference arrived in.
type ProductRefKind int

const (
	// ProductRefOpaque is anything that is not one of the other kinds.
	ProductRefOpaque ProductRefKind = iota
	// ProductRefRawString is a plain string id.
	ProductRefRawString
	// ProductRefObjectWithID is a populated product document carrying an _id.
	ProductRefObjectWithID
	// ProductRefStringConvertible is a database object id.
	ProductRefStringConvertible
)

func (k ProductRefKind) String() string {
	switch k {
	case ProductRefRawString:
		return "raw_string"
	case ProductRefObjectWithID:
		return "object_with_id"
	case ProductRefStringConvertible:
		return "object_id"
	default:
		return "opaque"
	}
}

// ProductRef is a line item's reference to its product. Storefront payloads
// send a string id, admin payloads may send the populated product, and stored
// orders hold an ObjectID; all of them decode into this one type.
type ProductRef struct {
	kind ProductRefKind
	str  string
	id   string
	oid  primitive.ObjectID
	raw  string
}

func RawProductRef(s string) ProductRef {
	return ProductRef{kind: ProductRefRawString, str: s}
}

func PopulatedProductRef(id string) ProductRef {
	return ProductRef{kind: ProductRefObjectWithID, id: id}
}

func ObjectIDProductRef(oid primitive.ObjectID) ProductRef {
	return ProductRef{kind: ProductRefStringConvertible, oid: oid}
}

func OpaqueProductRef(raw string) ProductRef {
	return ProductRef{kind: ProductRefOpaque, raw: raw}
}

func (r ProductRef) Kind() ProductRefKind { return r.kind }

// RawString returns the payload of a ProductRefRawString.
func (r ProductRef) RawString() string { return r.str }

// PopulatedID returns the stringified _id of a ProductRefObjectWithID.
func (r ProductRef) PopulatedID() string { return r.id }

// ObjectID returns the payload of a ProductRefStringConvertible.
func (r ProductRef) ObjectID() primitive.ObjectID { return r.oid }

// Opaque returns the compact text of a ProductRefOpaque.
func (r ProductRef) Opaque() string { return r.raw }

// UnmarshalJSON never fails: values it cannot classify become opaque.
func (r *ProductRef) UnmarshalJSON(data []byte) error {
	*r = productRefFromJSON(data)
	return nil
}

func productRefFromJSON(data []byte) ProductRef {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return OpaqueProductRef("")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return RawProductRef(s)
		}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err == nil {
			if id, ok := fields["_id"]; ok {
				return PopulatedProductRef(jsonIDText(id))
			}
			if oidText, ok := fields["$oid"]; ok && len(fields) == 1 {
				var hex string
				if err := json.Unmarshal(oidText, &hex); err == nil {
					if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
						return ObjectIDProductRef(oid)
					}
				}
			}
		}
	}
	return OpaqueProductRef(compactJSON(data))
}

// jsonIDText stringifies an _id value: strings verbatim, {"$oid": hex} as hex,
// anything else as compact JSON.
func jsonIDText(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var wrapped struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.OID != "" {
		return wrapped.OID
	}
	return compactJSON(data)
}

func compactJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}

// MarshalJSON writes the reference as the id string clients sent, or the
// original JSON for opaque values.
func (r ProductRef) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case ProductRefRawString:
		return json.Marshal(r.str)
	case ProductRefObjectWithID:
		return json.Marshal(r.id)
	case ProductRefStringConvertible:
		return json.Marshal(r.oid.Hex())
	default:
		if r.raw != "" && json.Valid([]byte(r.raw)) {
			return []byte(r.raw), nil
		}
		return json.Marshal(r.raw)
	}
}

// MarshalBSONValue stores object ids as ObjectID and everything else as a
// string, so a stored reference always resolves to the same key it had before
// it was written.
func (r ProductRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch r.kind {
	case ProductRefStringConvertible:
		return bson.MarshalValue(r.oid)
	case ProductRefObjectWithID:
		if oid, err := primitive.ObjectIDFromHex(r.id); err == nil {
			return bson.MarshalValue(oid)
		}
		return bson.MarshalValue(r.id)
	case ProductRefRawString:
		return bson.MarshalValue(r.str)
	default:
		return bson.MarshalValue(r.raw)
	}
}

// UnmarshalBSONValue classifies stored references the same way as JSON ones.
func (r *ProductRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeString:
		*r = RawProductRef(raw.StringValue())
	case bson.TypeObjectID:
		*r = ObjectIDProductRef(raw.ObjectID())
	case bson.TypeEmbeddedDocument:
		doc := raw.Document()
		if id, err := doc.LookupErr("_id"); err == nil {
			*r = PopulatedProductRef(bsonIDText(id))
			return nil
		}
		*r = OpaqueProductRef(doc.String())
	case bson.TypeNull, bson.TypeUndefined:
		*r = OpaqueProductRef("null")
	default:
		*r = OpaqueProductRef(raw.String())
	}
	return nil
}

func bsonIDText(v bson.RawValue) string {
	switch v.Type {
	case bson.TypeObjectID:
		return v.ObjectID().Hex()
	case bson.TypeString:
		return v.StringValue()
	default:
		return v.String()
	}
}

// GoString keeps %#v output readable in test failures.
func (r ProductRef) GoString() string {
	return fmt.Sprintf("ProductRef{%s}", r.kind)
}
