// Package item holds the typed row model shared by every table in the
// system and the single deserialization boundary that produces it.
// All defaulting and name normalization happens here; downstream code
// never probes raw attribute maps.
package item

import (
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// DefaultCategory is used whenever an
// item arrives with a blank category.
const DefaultCategory = "General"

// Item is a pantry or grocery list row. Both tables
// share this shape and are keyed by Id.
type Item struct {
	Id       string  `dynamodbav:"Id" json:"Id"`
	Name     string  `dynamodbav:"Name" json:"Name"`
	NameKey  string  `dynamodbav:"NameKey" json:"-"`
	Category string  `dynamodbav:"Category" json:"Category"`
	Quantity int     `dynamodbav:"Quantity" json:"Quantity"`
	Price    float64 `dynamodbav:"Price" json:"Price"`
}

// ListEntry is the listing response shape. Freshly
// scanned items are never finished.
type ListEntry struct {
	Item
	Finished bool `json:"finished"`
}

// NameKeyOf returns the aggregation key for a display name. Names
// that differ only in case or surrounding whitespace share a key.
func NameKeyOf(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize applies the boundary rules: trimmed name, derived name
// key, defaulted category, and non-negative quantity and price. The
// display casing of Name is preserved.
func (it Item) Normalize() Item {
	it.Name = strings.TrimSpace(it.Name)
	it.NameKey = NameKeyOf(it.Name)
	it.Category = strings.TrimSpace(it.Category)
	if it.Category == "" {
		it.Category = DefaultCategory
	}
	if it.Quantity < 0 {
		it.Quantity = 0
	}
	if it.Price < 0 {
		it.Price = 0
	}
	return it
}

// New builds a normalized item from raw field values.
func New(id, name, category string, quantity int, price float64) Item {
	it := Item{
		Id:       id,
		Name:     name,
		Category: category,
		Quantity: quantity,
		Price:    price,
	}
	return it.Normalize()
}

// Entries shapes scanned rows into listing entries.
func Entries(items []Item) []ListEntry {
	entries := make([]ListEntry, len(items))
	for i, it := range items {
		entries[i] = ListEntry{Item: it}
	}
	return entries
}

// FromStreamImage decodes a change feed row image into an Item.
// Absent or mistyped fields decode to zero values; the result is
// not normalized so that the raw stored shape remains observable
// to callers that care about it.
func FromStreamImage(image map[string]events.DynamoDBAttributeValue) Item {
	it := Item{
		Id:       stringAttr(image, "Id"),
		Name:     stringAttr(image, "Name"),
		NameKey:  stringAttr(image, "NameKey"),
		Category: stringAttr(image, "Category"),
		Quantity: int(numberAttr(image, "Quantity")),
	}
	if v, ok := image["Price"]; ok && v.DataType() == events.DataTypeNumber {
		if f, err := v.Float(); err == nil {
			it.Price = f
		}
	}
	return it
}

func stringAttr(image map[string]events.DynamoDBAttributeValue, name string) string {
	v, ok := image[name]
	if !ok || v.DataType() != events.DataTypeString {
		return ""
	}
	return v.String()
}

func numberAttr(image map[string]events.DynamoDBAttributeValue, name string) int64 {
	v, ok := image[name]
	if !ok || v.DataType() != events.DataTypeNumber {
		return 0
	}

	n, err := v.Integer()
	if err != nil {
		return 0
	}
	return n
}
