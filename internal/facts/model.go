// Package facts builds the read-only fact model every analysis engine
// queries. The build runs once per snapshot, materializes the join indexes
// (order items, payments, reviews by order) and enforces the referential
// invariants the engines rely on.
package facts

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/storelens/storelens/internal/models"
)

// IntegrityError reports a snapshot row violating a stated invariant. The
// run aborts on the first violation; silently dropping or repairing rows
// would corrupt downstream revenue totals.
type IntegrityError struct {
	Entity string
	Key    string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s %q: %s", e.Entity, e.Key, e.Reason)
}

// Model is the indexed, immutable view of one snapshot.
type Model struct {
	Customers  map[string]models.Customer
	Sellers    map[string]models.Seller
	Products   map[string]models.Product
	Categories map[string]models.Category

	Orders      []models.Order
	OrdersByID  map[string]int // index into Orders
	ItemsByOrder    map[string][]models.OrderItem
	PaymentsByOrder map[string][]models.Payment
	ReviewsByOrder  map[string][]models.Review

	delivered []models.Order
}

// Build constructs the fact model and validates referential integrity.
func Build(snap *models.Snapshot, log *slog.Logger) (*Model, error) {
	m := &Model{
		Customers:       make(map[string]models.Customer, len(snap.Customers)),
		Sellers:         make(map[string]models.Seller, len(snap.Sellers)),
		Products:        make(map[string]models.Product, len(snap.Products)),
		Categories:      make(map[string]models.Category, len(snap.Categories)),
		Orders:          snap.Orders,
		OrdersByID:      make(map[string]int, len(snap.Orders)),
		ItemsByOrder:    make(map[string][]models.OrderItem, len(snap.Orders)),
		PaymentsByOrder: make(map[string][]models.Payment),
		ReviewsByOrder:  make(map[string][]models.Review),
	}

	for _, c := range snap.Customers {
		m.Customers[c.ID] = c
	}
	for _, s := range snap.Sellers {
		m.Sellers[s.ID] = s
	}
	for _, p := range snap.Products {
		m.Products[p.ID] = p
	}
	for _, c := range snap.Categories {
		m.Categories[c.Name] = c
	}

	for _, o := range snap.Orders {
		if _, ok := m.Customers[o.CustomerID]; !ok {
			return nil, &IntegrityError{Entity: "order", Key: o.ID, Reason: fmt.Sprintf("references unknown customer %q", o.CustomerID)}
		}
		if !models.KnownOrderStatuses[o.Status] {
			return nil, &IntegrityError{Entity: "order", Key: o.ID, Reason: fmt.Sprintf("unknown status %q", o.Status)}
		}
		if _, dup := m.OrdersByID[o.ID]; dup {
			return nil, &IntegrityError{Entity: "order", Key: o.ID, Reason: "duplicate order identifier"}
		}
		m.OrdersByID[o.ID] = len(m.OrdersByID)
		if o.Status == models.OrderStatusDelivered && o.DeliveredAt != nil {
			m.delivered = append(m.delivered, o)
		}
	}

	for _, it := range snap.Items {
		if _, ok := m.OrdersByID[it.OrderID]; !ok {
			return nil, &IntegrityError{Entity: "order item", Key: fmt.Sprintf("%s/%d", it.OrderID, it.Seq), Reason: "references unknown order"}
		}
		if _, ok := m.Products[it.ProductID]; !ok {
			return nil, &IntegrityError{Entity: "order item", Key: fmt.Sprintf("%s/%d", it.OrderID, it.Seq), Reason: fmt.Sprintf("references unknown product %q", it.ProductID)}
		}
		if _, ok := m.Sellers[it.SellerID]; !ok {
			return nil, &IntegrityError{Entity: "order item", Key: fmt.Sprintf("%s/%d", it.OrderID, it.Seq), Reason: fmt.Sprintf("references unknown seller %q", it.SellerID)}
		}
		m.ItemsByOrder[it.OrderID] = append(m.ItemsByOrder[it.OrderID], it)
	}

	for _, p := range snap.Payments {
		if _, ok := m.OrdersByID[p.OrderID]; !ok {
			return nil, &IntegrityError{Entity: "payment", Key: fmt.Sprintf("%s/%d", p.OrderID, p.Seq), Reason: "references unknown order"}
		}
		m.PaymentsByOrder[p.OrderID] = append(m.PaymentsByOrder[p.OrderID], p)
	}

	for _, r := range snap.Reviews {
		if _, ok := m.OrdersByID[r.OrderID]; !ok {
			return nil, &IntegrityError{Entity: "review", Key: r.ID, Reason: "references unknown order"}
		}
		if r.Score < 1 || r.Score > 5 {
			return nil, &IntegrityError{Entity: "review", Key: r.ID, Reason: fmt.Sprintf("score %d outside [1,5]", r.Score)}
		}
		m.ReviewsByOrder[r.OrderID] = append(m.ReviewsByOrder[r.OrderID], r)
	}

	if log != nil {
		log.Info("fact model built",
			"customers", len(m.Customers),
			"sellers", len(m.Sellers),
			"products", len(m.Products),
			"categories", len(m.Categories),
			"orders", len(m.Orders),
			"delivered", len(m.delivered),
			"items", len(snap.Items),
			"payments", len(snap.Payments),
			"reviews", len(snap.Reviews),
		)
	}
	return m, nil
}

// DeliveredOrders returns orders with status delivered and a non-null
// delivery date, the only orders revenue and recency analytics consider.
func (m *Model) DeliveredOrders() []models.Order {
	return m.delivered
}

// OrderRevenue returns the order's price+freight total across its lines.
func (m *Model) OrderRevenue(orderID string) float64 {
	total := 0.0
	for _, it := range m.ItemsByOrder[orderID] {
		total += it.Price + it.Freight
	}
	return total
}

// OrderProductRevenue returns the pure product revenue (freight excluded).
func (m *Model) OrderProductRevenue(orderID string) float64 {
	total := 0.0
	for _, it := range m.ItemsByOrder[orderID] {
		total += it.Price
	}
	return total
}

// UniqueCustomer resolves an order-time customer id to the unique-person id.
// Falls back to the order-time id when the customer row carries no unique id.
func (m *Model) UniqueCustomer(customerID string) string {
	c, ok := m.Customers[customerID]
	if !ok || c.UniqueID == "" {
		return customerID
	}
	return c.UniqueID
}

// CategoryOf resolves a product to its category. The second return is false
// when the product's category reference does not resolve; such products are
// excluded from category-keyed aggregates, never fabricated.
func (m *Model) CategoryOf(productID string) (models.Category, bool) {
	p, ok := m.Products[productID]
	if !ok || p.Category == "" {
		return models.Category{}, false
	}
	c, ok := m.Categories[p.Category]
	return c, ok
}

// ReviewScores returns the review scores attached to an order. Orders
// without reviews return an empty slice so callers never count a missing
// review as zero.
func (m *Model) ReviewScores(orderID string) []int {
	reviews := m.ReviewsByOrder[orderID]
	scores := make([]int, 0, len(reviews))
	for _, r := range reviews {
		scores = append(scores, r.Score)
	}
	return scores
}

// MonthOf truncates a timestamp to its calendar month in UTC.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
