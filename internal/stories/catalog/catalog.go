// Package catalog resolves service references. It is read-only reference
// data; historical orders keep their own snapshot of name and price.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	platforms []*Platform
	byID      map[string]*Service
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]*Service)}
	for _, fp := range f.Platforms {
		if fp.Name == "" {
			return nil, fmt.Errorf("platform without name")
		}
		p := &Platform{Name: fp.Name}
		for _, fc := range fp.Categories {
			cat := &Category{Name: fc.Name}
			for _, fs := range fc.Services {
				svc, err := fs.toService(fp.Name, fc.Name)
				if err != nil {
					return nil, err
				}
				if _, dup := c.byID[svc.ID]; dup {
					return nil, fmt.Errorf("duplicate service id %q", svc.ID)
				}
				c.byID[svc.ID] = svc
				cat.Services = append(cat.Services, svc)
			}
			p.Categories = append(p.Categories, cat)
		}
		c.platforms = append(c.platforms, p)
	}

	return c, nil
}

func (fs fileService) toService(platform, category string) (*Service, error) {
	if fs.ID == "" || fs.Name == "" {
		return nil, fmt.Errorf("service in %s/%s needs id and name", platform, category)
	}
	price, err := decimal.NewFromString(fs.PricePer100)
	if err != nil {
		return nil, fmt.Errorf("service %s: price_per_100 %q: %w", fs.ID, fs.PricePer100, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("service %s: price_per_100 must be positive", fs.ID)
	}
	if fs.Minimum < 1 {
		return nil, fmt.Errorf("service %s: min must be at least 1", fs.ID)
	}
	return &Service{
		ID:          fs.ID,
		Name:        fs.Name,
		Description: fs.Description,
		PricePer100: price,
		Minimum:     fs.Minimum,
		Platform:    platform,
		Category:    category,
	}, nil
}

// Lookup resolves a service by id.
func (c *Catalog) Lookup(id string) (*Service, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

func (c *Catalog) Platforms() []string {
	return lo.Map(c.platforms, func(p *Platform, _ int) string { return p.Name })
}

// Categories returns the category names of platform; ok is false for an
// unknown platform.
func (c *Catalog) Categories(platform string) ([]string, bool) {
	p, ok := lo.Find(c.platforms, func(p *Platform) bool { return p.Name == platform })
	if !ok {
		return nil, false
	}
	return lo.Map(p.Categories, func(cat *Category, _ int) string { return cat.Name }), true
}

// Services returns the services listed under platform/category.
func (c *Catalog) Services(platform, category string) ([]*Service, bool) {
	p, ok := lo.Find(c.platforms, func(p *Platform) bool { return p.Name == platform })
	if !ok {
		return nil, false
	}
	cat, ok := lo.Find(p.Categories, func(cat *Category) bool { return cat.Name == category })
	if !ok {
		return nil, false
	}
	return cat.Services, true
}
