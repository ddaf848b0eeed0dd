package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartItemLineTotal(t *testing.T) {
	it := CartItem{Price: decimal.NewFromInt(1500), Quantity: 3}
	assert.True(t, decimal.NewFromInt(4500).Equal(it.LineTotal()))
}

func TestCartItemCloneDetachesBook(t *testing.T) {
	orig := CartItem{ID: "love-male-to-female", Book: &BookCustomization{}}
	orig.Book.Texts[0] = "first"

	cp := orig.Clone()
	orig.Book.Texts[0] = "second"

	assert.Equal(t, "first", cp.Book.Texts[0])
}
