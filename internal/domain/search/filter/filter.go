package filter

import (
	"fmt"
	"strings"

	"github.com/jewelux/gemdex/internal/domain/catalog"
)

// Criteria narrows a candidate set by category and/or attribute values.
// The zero value means "no constraint". Filtering is strict exclusion: it
// only ever shrinks the candidate set, and applying the same Criteria twice
// yields the same set as applying it once.
type Criteria struct {
	category   string
	attributes map[catalog.Attribute][]string
}

// New validates filter inputs. Attribute keys must belong to the known
// attribute vocabulary; unknown keys are rejected rather than ignored.
func New(category string, attributes map[string][]string) (Criteria, error) {
	c := Criteria{category: strings.TrimSpace(category)}
	if len(attributes) == 0 {
		return c, nil
	}
	c.attributes = make(map[catalog.Attribute][]string, len(attributes))
	for name, values := range attributes {
		attr, err := catalog.ParseAttribute(name)
		if err != nil {
			return Criteria{}, fmt.Errorf("attribute filter: %w", err)
		}
		kept := make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			return Criteria{}, fmt.Errorf("attribute filter %q has no values", name)
		}
		c.attributes[attr] = kept
	}
	return c, nil
}

// IsEmpty reports whether the criteria impose no constraint.
func (c Criteria) IsEmpty() bool {
	return c.category == "" && len(c.attributes) == 0
}

// Category returns the category constraint, empty when unconstrained.
func (c Criteria) Category() string { return c.category }

// Keep reports whether an item passes every constraint. Category must match
// exactly (case-insensitive, whitespace-trimmed). Every attribute key must
// independently pass; within one key, any acceptable value present as a
// case-insensitive substring of the item's field is enough.
func (c Criteria) Keep(item *catalog.Item) bool {
	if c.category != "" {
		got := strings.TrimSpace(item.Category())
		if !strings.EqualFold(got, c.category) {
			return false
		}
	}
	for attr, accepted := range c.attributes {
		field := strings.ToLower(item.Attribute(attr))
		ok := false
		for _, v := range accepted {
			if strings.Contains(field, strings.ToLower(v)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
