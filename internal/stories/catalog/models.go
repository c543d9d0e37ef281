package catalog

import "github.com/shopspring/decimal"

// Service is one purchasable catalog entry.
type Service struct {
	ID          string
	Name        string
	Description string
	PricePer100 decimal.Decimal
	Minimum     int
	Platform    string
	Category    string
}

type Category struct {
	Name     string
	Services []*Service
}

type Platform struct {
	Name       string
	Categories []*Category
}

type fileService struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	PricePer100 string `yaml:"price_per_100"`
	Minimum     int    `yaml:"min"`
	Description string `yaml:"desc"`
}

type fileCategory struct {
	Name     string        `yaml:"name"`
	Services []fileService `yaml:"services"`
}

type filePlatform struct {
	Name       string         `yaml:"name"`
	Categories []fileCategory `yaml:"categories"`
}

type file struct {
	Platforms []filePlatform `yaml:"platforms"`
}
