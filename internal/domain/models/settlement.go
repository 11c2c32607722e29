package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement moves a sale payment from the payer to the previous owner.
type Settlement struct {
	ID        string          `json:"id"`
	ParcelID  string          `json:"parcel_id"`
	Payer     Identity        `json:"payer"`
	Payee     Identity        `json:"payee"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Account is a balance held in the settlement book.
type Account struct {
	Identity Identity        `json:"identity"`
	Balance  decimal.Decimal `json:"balance"`
	Closed   bool            `json:"closed"`
}
