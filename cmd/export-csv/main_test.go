package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseoflove/pkg/models"
)

func sampleOrders() []models.Order {
	return []models.Order{{
		Number:        "HOL-1A2B3C4D",
		CustomerName:  "Ana, Maria",
		CustomerEmail: "ana@example.com",
		Items: []models.CartItem{
			{ID: "3", Kind: models.ItemKindProduct, Name: "Teddy", Price: decimal.NewFromInt(2500), Quantity: 2, Image: "/images/teddy.png"},
			{ID: "love-male-to-female", Kind: models.ItemKindBook, Name: "Custom Book", Price: decimal.NewFromInt(1900), Quantity: 1,
				Book: &models.BookCustomization{Category: "love", Type: "male-to-female"}},
		},
		Total:     decimal.NewFromInt(6900),
		CreatedAt: time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC),
	}}
}

func TestExportOrders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exportOrders(&buf, sampleOrders()))

	assert.Equal(t,
		"order_number,user_id,customer_name,customer_email,items,total,created_at\n"+
			"HOL-1A2B3C4D,,\"Ana, Maria\",ana@example.com,2,6900.00,2024-02-14T09:00:00Z\n",
		buf.String())
}

func TestExportItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exportItems(&buf, sampleOrders()))

	out := buf.String()
	assert.Contains(t, out, "HOL-1A2B3C4D,3,product,Teddy,2500.00,2,5000.00,/images/teddy.png,\n")
	assert.Contains(t, out, "HOL-1A2B3C4D,love-male-to-female,book,Custom Book,1900.00,1,1900.00,,")
	assert.Contains(t, out, `""category"":""love""`)
}
