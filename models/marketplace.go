package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Store struct {
	ID          string          `json:"id"`
	VendorID    string          `json:"vendor_id"`
	StoreName   string          `json:"store_name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	PriceStart  decimal.Decimal `json:"price_start"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Service struct {
	ID          string          `json:"id"`
	StoreID     string          `json:"store_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
}

type Event struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"` // draft, planned, completed, cancelled
	CreatedAt time.Time `json:"created_at"`
}

// GuestAccess grants credential-based read access to a single event. The
// access code is stored bcrypt-hashed.
type GuestAccess struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Label     string    `json:"label"`
	CodeHash  string    `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// User roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleGuest    = "guest"
)
