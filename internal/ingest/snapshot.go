package ingest

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/storelens/storelens/internal/database"
	"github.com/storelens/storelens/internal/models"
)

// SnapshotLoader reads every entity stream from a snapshot database.
type SnapshotLoader struct {
	db      *database.DB
	builder sq.StatementBuilderType
}

func NewSnapshotLoader(db *database.DB) *SnapshotLoader {
	return &SnapshotLoader{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(db.Placeholders()),
	}
}

// Load reads the full snapshot in one pass per table.
func (l *SnapshotLoader) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	if err := l.loadCustomers(ctx, snap); err != nil {
		return nil, err
	}
	if err := l.loadSellers(ctx, snap); err != nil {
		return nil, err
	}
	if err := l.loadProducts(ctx, snap); err != nil {
		return nil, err
	}
	if err := l.loadCategories(ctx, snap); err != nil {
		return nil, err
	}
	if err := l.loadOrders(ctx, snap); err != nil {
		return nil, err
	}
	if err := l.loadItems(ctx, snap); err != nil {
		return nil, err
	}
	if err := l.loadPayments(ctx, snap); err != nil {
		return nil, err
	}
	if err := l.loadReviews(ctx, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (l *SnapshotLoader) query(ctx context.Context, b sq.SelectBuilder) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return rows, nil
}

func (l *SnapshotLoader) loadCustomers(ctx context.Context, snap *models.Snapshot) error {
	rows, err := l.query(ctx, l.builder.
		Select("customer_id", "customer_unique_id", "city", "state").
		From("customers"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.UniqueID, &c.City, &c.State); err != nil {
			return fmt.Errorf("failed to scan customer: %w", err)
		}
		snap.Customers = append(snap.Customers, c)
	}
	return rows.Err()
}

func (l *SnapshotLoader) loadSellers(ctx context.Context, snap *models.Snapshot) error {
	rows, err := l.query(ctx, l.builder.
		Select("seller_id", "city", "state").
		From("sellers"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Seller
		if err := rows.Scan(&s.ID, &s.City, &s.State); err != nil {
			return fmt.Errorf("failed to scan seller: %w", err)
		}
		snap.Sellers = append(snap.Sellers, s)
	}
	return rows.Err()
}

func (l *SnapshotLoader) loadProducts(ctx context.Context, snap *models.Snapshot) error {
	rows, err := l.query(ctx, l.builder.
		Select("product_id", "category", "weight_g", "length_cm", "height_cm", "width_cm").
		From("products"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		var category sql.NullString
		var weight, length, height, width sql.NullFloat64
		if err := rows.Scan(&p.ID, &category, &weight, &length, &height, &width); err != nil {
			return fmt.Errorf("failed to scan product: %w", err)
		}
		p.Category = category.String
		p.WeightG = weight.Float64
		p.LengthCM = length.Float64
		p.HeightCM = height.Float64
		p.WidthCM = width.Float64
		snap.Products = append(snap.Products, p)
	}
	return rows.Err()
}

func (l *SnapshotLoader) loadCategories(ctx context.Context, snap *models.Snapshot) error {
	rows, err := l.query(ctx, l.builder.
		Select("category_name", "display_name").
		From("categories"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Name, &c.DisplayName); err != nil {
			return fmt.Errorf("failed to scan category: %w", err)
		}
		snap.Categories = append(snap.Categories, c)
	}
	return rows.Err()
}

func (l *SnapshotLoader) loadOrders(ctx context.Context, snap *models.Snapshot) error {
	rows, err := l.query(ctx, l.builder.
		Select("order_id", "customer_id", "status", "purchased_at",
			"approved_at", "shipped_at", "delivered_at", "estimated_delivery_at").
		From("orders"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var approved, shipped, delivered sql.NullTime
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.PurchasedAt,
			&approved, &shipped, &delivered, &o.EstimatedDeliveryAt); err != nil {
			return fmt.Errorf("failed to scan order: %w", err)
		}
		if approved.Valid {
			o.ApprovedAt = &approved.Time
		}
		if shipped.Valid {
			o.ShippedAt = &shipped.Time
		}
		if delivered.Valid {
			o.DeliveredAt = &delivered.Time
		}
		snap.Orders = append(snap.Orders, o)
	}
	return rows.Err()
}

func (l *SnapshotLoader) loadItems(ctx context.Context, snap *models.Snapshot) error {
	rows, err := l.query(ctx, l.builder.
		Select("order_id", "seq", "product_id", "seller_id", "price", "freight").
		From("order_items"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.OrderID, &it.Seq, &it.ProductID, &it.SellerID, &it.Price, &it.Freight); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		snap.Items = append(snap.Items, it)
	}
	return rows.Err()
}

func (l *SnapshotLoader) loadPayments(ctx context.Context, snap *models.Snapshot) error {
	rows, err := l.query(ctx, l.builder.
		Select("order_id", "seq", "method", "installments", "amount").
		From("payments"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.OrderID, &p.Seq, &p.Method, &p.Installments, &p.Amount); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		snap.Payments = append(snap.Payments, p)
	}
	return rows.Err()
}

func (l *SnapshotLoader) loadReviews(ctx context.Context, snap *models.Snapshot) error {
	rows, err := l.query(ctx, l.builder.
		Select("review_id", "order_id", "score", "created_at", "answered_at").
		From("reviews"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r models.Review
		var answered sql.NullTime
		if err := rows.Scan(&r.ID, &r.OrderID, &r.Score, &r.CreatedAt, &answered); err != nil {
			return fmt.Errorf("failed to scan review: %w", err)
		}
		if answered.Valid {
			r.AnsweredAt = &answered.Time
		}
		snap.Reviews = append(snap.Reviews, r)
	}
	return rows.Err()
}
