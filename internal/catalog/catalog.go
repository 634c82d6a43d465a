package catalog

import (
	"fmt"

	"studio-storefront/internal/model"
)

type Category struct {
	Name     string                  `json:"category"`
	Services []model.ServiceOffering `json:"services"`
}

// Catalog is a read-only registry of service offerings.
type Catalog struct {
	categories []Category
	byID       map[string]model.ServiceOffering
}

// New builds a catalog from categories in declaration order. Services
// inherit their category name when they leave it empty.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{
		byID: make(map[string]model.ServiceOffering),
	}

	for _, cat := range categories {
		group := Category{Name: cat.Name, Services: make([]model.ServiceOffering, 0, len(cat.Services))}
		for _, svc := range cat.Services {
			if svc.Category == "" {
				svc.Category = cat.Name
			}
			if !Validate(svc) {
				return nil, fmt.Errorf("invalid service offering %q", svc.ID)
			}
			if _, dup := c.byID[svc.ID]; dup {
				return nil, fmt.Errorf("duplicate service id %q", svc.ID)
			}
			c.byID[svc.ID] = svc
			group.Services = append(group.Services, svc)
		}
		c.categories = append(c.categories, group)
	}

	return c, nil
}

func (c *Catalog) GetByID(id string) (model.ServiceOffering, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

// ListAll returns the services grouped by category in declaration order.
func (c *Catalog) ListAll() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{
			Name:     cat.Name,
			Services: append([]model.ServiceOffering(nil), cat.Services...),
		}
	}
	return out
}

func Validate(svc model.ServiceOffering) bool {
	return svc.ID != "" &&
		svc.Name != "" &&
		svc.Description != "" &&
		svc.Category != "" &&
		svc.Price > 0
}
