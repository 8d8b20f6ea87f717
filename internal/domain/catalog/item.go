package catalog

import (
	"fmt"
	"strings"
)

// Attribute is a known catalog attribute column. The set is fixed so schema
// drift in the source table is caught at load time instead of surfacing as
// missed filters at query time.
type Attribute string

const (
	AttrMaterial Attribute = "material"
	AttrGemstone Attribute = "gemstone"
	AttrGender   Attribute = "gender"
)

// ParseAttribute validates an attribute column name.
func ParseAttribute(name string) (Attribute, error) {
	switch a := Attribute(strings.ToLower(strings.TrimSpace(name))); a {
	case AttrMaterial, AttrGemstone, AttrGender:
		return a, nil
	default:
		return "", fmt.Errorf("unknown attribute %q", name)
	}
}

// Item is one immutable catalog row. Its id is the row position in the
// catalog table and is the identifier space shared with the vector indices.
type Item struct {
	id          int
	path        string
	category    string
	description string
	attributes  map[Attribute]string
}

// New creates a catalog item.
func New(id int, path, category, description string, attributes map[Attribute]string) (Item, error) {
	if id < 0 {
		return Item{}, fmt.Errorf("item id must be non-negative, got %d", id)
	}
	if path == "" {
		return Item{}, fmt.Errorf("item %d: path is required", id)
	}
	if category == "" {
		return Item{}, fmt.Errorf("item %d: category is required", id)
	}
	return Item{
		id:          id,
		path:        path,
		category:    category,
		description: description,
		attributes:  attributes,
	}, nil
}

// ID returns the stable row identifier.
func (i *Item) ID() int { return i.id }

// Path returns the asset locator.
func (i *Item) Path() string { return i.path }

// Category returns the item category (ring, necklace, ...).
func (i *Item) Category() string { return i.category }

// Description returns the free-text description. May be empty.
func (i *Item) Description() string { return i.description }

// Attribute returns the value of a known attribute field. Values are
// comma-joined or scalar strings; empty when the column was absent.
func (i *Item) Attribute(a Attribute) string { return i.attributes[a] }
