package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account profile resolved from a bearer credential
type User struct {
	ID          uuid.UUID
	Email       string
	Name        string
	Role        Role
	Active      bool
	Balance     float64    // wallet balance, customers only
	DriverID    *uuid.UUID // set for driver accounts, links to the driver record
	TokenLookup string     // SHA256(token) hex for fast lookup
	TokenHash   string     // bcrypt hash for verification
	CreatedAt   time.Time
}

// OrderItem is a line item on an order
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// DeliveryInfo is the delivery contact block captured at checkout
type DeliveryInfo struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Milestone records that a lifecycle status was reached
type Milestone struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Completed bool        `json:"completed"`
}

// DriverSnapshot is a denormalized copy of the driver taken at assignment
// time. It is intentionally not a live reference: historical orders keep the
// name/phone the driver had when assigned.
type DriverSnapshot struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone,omitempty"`
	Vehicle string    `json:"vehicle,omitempty"`
}

// ProofOfDelivery is the driver-submitted confirmation attached to an order
// at final delivery
type ProofOfDelivery struct {
	Notes       string    `json:"notes"`
	HasImage    bool      `json:"hasImage"`
	DeliveredBy uuid.UUID `json:"deliveredBy"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// Order represents a customer order
type Order struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	CustomerName    string
	Items           []OrderItem
	Total           float64 // sum of price*quantity, computed at creation
	Status          OrderStatus
	DeliveryInfo    DeliveryInfo
	PaymentMethod   PaymentMethod
	Milestones      []Milestone
	AssignedDriver  *DriverSnapshot
	AssignedAt      *time.Time
	ProofOfDelivery *ProofOfDelivery
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Address is a delivery address
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Delivery represents a shipment tracked by a customer-facing reference
// number. Deliveries do not carry milestone history; status is overwritten.
type Delivery struct {
	ID                uuid.UUID
	ReferenceNumber   string // unique, immutable, customer-facing
	CustomerName      string
	CustomerPhone     string
	Address           Address
	Status            DeliveryStatus
	AssignedDriver    *DriverSnapshot
	EstimatedDelivery string // date, e.g. "2026-01-15"
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Driver represents a delivery driver
type Driver struct {
	ID               uuid.UUID
	UserID           uuid.UUID // linked auth identity
	Name             string
	Phone            string
	Vehicle          string
	Status           DriverStatus
	ActiveDeliveries int
	TotalDeliveries  int
	Rating           float64
	CreatedAt        time.Time
}

// NotificationTargetAdmin is the sentinel user id addressing all admins
const NotificationTargetAdmin = "admin"

// Notification is created as a side effect of order/delivery mutations.
// ID doubles as the dedup key ("{entityID}-{status}"): re-emitting for the
// same key overwrites instead of appending.
type Notification struct {
	ID        string
	UserID    string // uuid string, or NotificationTargetAdmin
	Message   string
	Type      NotificationType
	Read      bool
	CreatedAt time.Time
}

// ReturnRequest represents a customer return
type ReturnRequest struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	CustomerID   uuid.UUID
	Reason       string
	Description  string
	RefundMethod RefundMethod
	HasProof     bool
	Status       ReturnStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Payment tracks the payment record for an order
type Payment struct {
	OrderID    uuid.UUID
	SourceID   *string // PayMongo source id for gcash payments
	Amount     float64
	Status     string // pending, chargeable, paid, failed, verified (COD)
	Type       PaymentMethod
	UserID     uuid.UUID
	VerifiedBy *uuid.UUID // admin who verified a COD payment
	VerifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Product is a catalog item
type Product struct {
	ID          string
	Name        string
	Price       float64
	Stock       int
	Description string
	ImageURL    string
}

// SupplierPurchase is one past purchase from a supplier
type SupplierPurchase struct {
	Date   string  `json:"date"` // e.g. "2025-09-15"
	Items  string  `json:"items"`
	Amount float64 `json:"amount"`
}

// Supplier is a restock source for the catalog
type Supplier struct {
	ID       string
	Name     string
	Contact  string
	Email    string
	Products []string
	History  []SupplierPurchase
}

// InventoryRecord tracks stock levels for a product
type InventoryRecord struct {
	ProductID       string
	ProductName     string
	CurrentStock    int
	ReorderLevel    int
	ReorderQuantity int
	LastRestocked   time.Time
	NeedsReorder    bool
}
