package models

import "github.com/shopspring/decimal"

const (
	ItemKindProduct = "product"
	ItemKindBook    = "book"
)

// BookCustomization is the per-page content frozen into a cart line.
type BookCustomization struct {
	Category string       `json:"category"`
	Type     string       `json:"type"`
	Texts    [8]string    `json:"texts"`
	Styles   [8]PageStyle `json:"styles"`
}

type CartItem struct {
	ID       string             `json:"id"`
	Kind     string             `json:"kind"`
	Name     string             `json:"name"`
	Price    decimal.Decimal    `json:"price"`
	Image    string             `json:"image"`
	Quantity int                `json:"quantity"`
	Book     *BookCustomization `json:"book,omitempty"`
}

// LineTotal is price times quantity.
func (it CartItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Clone returns a copy that shares no memory with it.
func (it CartItem) Clone() CartItem {
	if it.Book != nil {
		b := *it.Book
		it.Book = &b
	}
	return it
}
