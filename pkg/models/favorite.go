package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Favorite struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	AddedAt   time.Time       `json:"added_at"`
}
