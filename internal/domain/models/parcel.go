package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Identity names an authenticated actor. Identities are compared by value only.
type Identity string

// OwnershipRecord is the current state of one registered land parcel.
type OwnershipRecord struct {
	Owner         Identity        `json:"owner"`
	Location      string          `json:"location"`
	ParcelID      string          `json:"parcel_id"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
	RegisteredAt  time.Time       `json:"registered_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EventType enumerates the ledger mutations that are published.
type EventType string

const (
	EventRegistered  EventType = "registered"
	EventTransferred EventType = "transferred"
	EventSold        EventType = "sold"
)

// ParcelEvent describes a committed ledger mutation.
type ParcelEvent struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	ParcelID   string          `json:"parcel_id"`
	Location   string          `json:"location"`
	From       Identity        `json:"from,omitempty"`
	To         Identity        `json:"to"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
