package models

import "github.com/shopspring/decimal"

// Product is a fixed catalog entry (lockets, notebooks, plush...).
type Product struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Category string          `json:"category" yaml:"category"`
	Price    decimal.Decimal `json:"price" yaml:"-"`
	Image    string          `json:"image" yaml:"image"`
}

// ProductCategory groups products on the shop page.
type ProductCategory struct {
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name" yaml:"name"`
}
