package models

import (
	"time"
)

// Customer represents the buyer attached to an order. ID is the order-time
// identifier; UniqueID identifies the person across orders.
type Customer struct {
	ID       string `json:"id" db:"id"`
	UniqueID string `json:"unique_id" db:"unique_id"`
	City     string `json:"city" db:"city"`
	State    string `json:"state" db:"state"`
}

// Seller represents a marketplace seller fulfilling order items.
type Seller struct {
	ID    string `json:"id" db:"id"`
	City  string `json:"city" db:"city"`
	State string `json:"state" db:"state"`
}

// Product represents a catalog item. Category holds the native category name
// and may be empty or unresolved; such products are excluded from
// category-keyed aggregates.
type Product struct {
	ID       string  `json:"id" db:"id"`
	Category string  `json:"category" db:"category"`
	WeightG  float64 `json:"weight_g" db:"weight_g"`
	LengthCM float64 `json:"length_cm" db:"length_cm"`
	HeightCM float64 `json:"height_cm" db:"height_cm"`
	WidthCM  float64 `json:"width_cm" db:"width_cm"`
}

// Category maps a native category name to its display name.
type Category struct {
	Name        string `json:"name" db:"name"`
	DisplayName string `json:"display_name" db:"display_name"`
}

// Order represents a customer order. Timestamps after purchase are optional
// and only present once the order reaches the matching status.
type Order struct {
	ID                  string     `json:"id" db:"id"`
	CustomerID          string     `json:"customer_id" db:"customer_id"`
	Status              string     `json:"status" db:"status"`
	PurchasedAt         time.Time  `json:"purchased_at" db:"purchased_at"`
	ApprovedAt          *time.Time `json:"approved_at" db:"approved_at"`
	ShippedAt           *time.Time `json:"shipped_at" db:"shipped_at"`
	DeliveredAt         *time.Time `json:"delivered_at" db:"delivered_at"`
	EstimatedDeliveryAt time.Time  `json:"estimated_delivery_at" db:"estimated_delivery_at"`
}

// OrderItem is one line of an order, keyed by (OrderID, Seq).
type OrderItem struct {
	OrderID   string  `json:"order_id" db:"order_id"`
	Seq       int     `json:"seq" db:"seq"`
	ProductID string  `json:"product_id" db:"product_id"`
	SellerID  string  `json:"seller_id" db:"seller_id"`
	Price     float64 `json:"price" db:"price"`
	Freight   float64 `json:"freight" db:"freight"`
}

// Payment is one payment record for an order. Orders may split across
// several payments and the payment total need not equal the item total.
type Payment struct {
	OrderID      string  `json:"order_id" db:"order_id"`
	Seq          int     `json:"seq" db:"seq"`
	Method       string  `json:"method" db:"method"`
	Installments int     `json:"installments" db:"installments"`
	Amount       float64 `json:"amount" db:"amount"`
}

// Review is a post-delivery review. Score is an integer in [1,5]. An order
// may carry zero or several reviews; a missing review is absent, never zero.
type Review struct {
	ID         string     `json:"id" db:"id"`
	OrderID    string     `json:"order_id" db:"order_id"`
	Score      int        `json:"score" db:"score"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	AnsweredAt *time.Time `json:"answered_at" db:"answered_at"`
}

// Snapshot is one immutable analysis input: every entity stream loaded up
// front by an ingest source. The engine never mutates it.
type Snapshot struct {
	Customers  []Customer  `json:"customers"`
	Sellers    []Seller    `json:"sellers"`
	Products   []Product   `json:"products"`
	Categories []Category  `json:"categories"`
	Orders     []Order     `json:"orders"`
	Items      []OrderItem `json:"items"`
	Payments   []Payment   `json:"payments"`
	Reviews    []Review    `json:"reviews"`
}

// Order statuses
const (
	OrderStatusDelivered   = "delivered"
	OrderStatusShipped     = "shipped"
	OrderStatusCanceled    = "canceled"
	OrderStatusUnavailable = "unavailable"
	OrderStatusInvoiced    = "invoiced"
	OrderStatusProcessing  = "processing"
	OrderStatusCreated     = "created"
	OrderStatusApproved    = "approved"
)

// KnownOrderStatuses lists every status the snapshot may carry.
var KnownOrderStatuses = map[string]bool{
	OrderStatusDelivered:   true,
	OrderStatusShipped:     true,
	OrderStatusCanceled:    true,
	OrderStatusUnavailable: true,
	OrderStatusInvoiced:    true,
	OrderStatusProcessing:  true,
	OrderStatusCreated:     true,
	OrderStatusApproved:    true,
}
