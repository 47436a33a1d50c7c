package domain

import (
	"fmt"

	"github.com/whiteknight/neoknight/internal/specification"
)

// CustomerFilter is the set of customer filters exposed by the API and the CLI.
// Zero fields are ignored.
type CustomerFilter struct {
	Name          string
	NamePrefix    string
	EmailContains string
	Active        *bool
	MinAge        *int
}

// Specification combines the set filters with AND.
func (f CustomerFilter) Specification() specification.Specification {
	var specs []specification.Specification
	if f.Name != "" {
		specs = append(specs, specification.Eq("CustomerName", f.Name))
	}
	if f.NamePrefix != "" {
		specs = append(specs, specification.StartsWith{Property: "CustomerName", Value: f.NamePrefix})
	}
	if f.EmailContains != "" {
		specs = append(specs, specification.Contains{Property: "Email", Value: f.EmailContains})
	}
	if f.Active != nil {
		specs = append(specs, specification.Eq("Active", *f.Active))
	}
	if f.MinAge != nil {
		minAge := *f.MinAge
		// Stored properties are text, so numeric comparisons run client side.
		specs = append(specs, specification.Where(fmt.Sprintf("age >= %d", minAge), func(c *Customer) bool {
			return c.Age >= minAge
		}))
	}
	return specification.AndOf(specs...)
}
