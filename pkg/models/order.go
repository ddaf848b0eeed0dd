package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	Number        string          `json:"order_number"`
	UserID        string          `json:"user_id,omitempty"`
	ProfileID     string          `json:"-"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Items         []CartItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}
