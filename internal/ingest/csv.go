// Package ingest loads one immutable snapshot from an external source: a
// CSV directory or a snapshot database. Loaders coerce types and NULLs;
// referential validation stays in the fact-model build.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/storelens/storelens/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// CSV file names expected inside the snapshot directory.
const (
	customersFile  = "customers.csv"
	sellersFile    = "sellers.csv"
	productsFile   = "products.csv"
	categoriesFile = "categories.csv"
	ordersFile     = "orders.csv"
	orderItemsFile = "order_items.csv"
	paymentsFile   = "payments.csv"
	reviewsFile    = "reviews.csv"
)

// LoadSnapshotCSV reads every entity stream from a directory of CSV files
// with header rows.
func LoadSnapshotCSV(dir string) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	if err := readCSV(filepath.Join(dir, customersFile), func(row record) error {
		snap.Customers = append(snap.Customers, models.Customer{
			ID:       row.get("customer_id"),
			UniqueID: row.get("customer_unique_id"),
			City:     row.get("city"),
			State:    row.get("state"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(filepath.Join(dir, sellersFile), func(row record) error {
		snap.Sellers = append(snap.Sellers, models.Seller{
			ID:    row.get("seller_id"),
			City:  row.get("city"),
			State: row.get("state"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(filepath.Join(dir, productsFile), func(row record) error {
		p := models.Product{
			ID:       row.get("product_id"),
			Category: row.get("category"),
		}
		var err error
		if p.WeightG, err = row.float("weight_g"); err != nil {
			return err
		}
		if p.LengthCM, err = row.float("length_cm"); err != nil {
			return err
		}
		if p.HeightCM, err = row.float("height_cm"); err != nil {
			return err
		}
		if p.WidthCM, err = row.float("width_cm"); err != nil {
			return err
		}
		snap.Products = append(snap.Products, p)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(filepath.Join(dir, categoriesFile), func(row record) error {
		snap.Categories = append(snap.Categories, models.Category{
			Name:        row.get("category_name"),
			DisplayName: row.get("display_name"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(filepath.Join(dir, ordersFile), func(row record) error {
		o := models.Order{
			ID:         row.get("order_id"),
			CustomerID: row.get("customer_id"),
			Status:     row.get("status"),
		}
		var err error
		if o.PurchasedAt, err = row.timestamp("purchased_at"); err != nil {
			return err
		}
		if o.EstimatedDeliveryAt, err = row.timestamp("estimated_delivery_at"); err != nil {
			return err
		}
		if o.ApprovedAt, err = row.optionalTimestamp("approved_at"); err != nil {
			return err
		}
		if o.ShippedAt, err = row.optionalTimestamp("shipped_at"); err != nil {
			return err
		}
		if o.DeliveredAt, err = row.optionalTimestamp("delivered_at"); err != nil {
			return err
		}
		snap.Orders = append(snap.Orders, o)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(filepath.Join(dir, orderItemsFile), func(row record) error {
		it := models.OrderItem{
			OrderID:   row.get("order_id"),
			ProductID: row.get("product_id"),
			SellerID:  row.get("seller_id"),
		}
		var err error
		if it.Seq, err = row.int("seq"); err != nil {
			return err
		}
		if it.Price, err = row.float("price"); err != nil {
			return err
		}
		if it.Freight, err = row.float("freight"); err != nil {
			return err
		}
		snap.Items = append(snap.Items, it)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(filepath.Join(dir, paymentsFile), func(row record) error {
		p := models.Payment{
			OrderID: row.get("order_id"),
			Method:  row.get("method"),
		}
		var err error
		if p.Seq, err = row.int("seq"); err != nil {
			return err
		}
		if p.Installments, err = row.int("installments"); err != nil {
			return err
		}
		if p.Amount, err = row.float("amount"); err != nil {
			return err
		}
		snap.Payments = append(snap.Payments, p)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readCSV(filepath.Join(dir, reviewsFile), func(row record) error {
		r := models.Review{
			ID:      row.get("review_id"),
			OrderID: row.get("order_id"),
		}
		var err error
		if r.Score, err = row.int("score"); err != nil {
			return err
		}
		if r.CreatedAt, err = row.timestamp("created_at"); err != nil {
			return err
		}
		if r.AnsweredAt, err = row.optionalTimestamp("answered_at"); err != nil {
			return err
		}
		snap.Reviews = append(snap.Reviews, r)
		return nil
	}); err != nil {
		return nil, err
	}

	return snap, nil
}

// record is one CSV row with header-name access.
type record struct {
	file   string
	line   int
	header map[string]int
	fields []string
}

func (r record) get(column string) string {
	idx, ok := r.header[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

func (r record) float(column string) (float64, error) {
	raw := r.get(column)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %s: %w", r.file, r.line, column, err)
	}
	return v, nil
}

func (r record) int(column string) (int, error) {
	raw := r.get(column)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %s: %w", r.file, r.line, column, err)
	}
	return v, nil
}

func (r record) timestamp(column string) (time.Time, error) {
	raw := r.get(column)
	t, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s line %d: column %s: %w", r.file, r.line, column, err)
	}
	return t.UTC(), nil
}

func (r record) optionalTimestamp(column string) (*time.Time, error) {
	if r.get(column) == "" {
		return nil, nil
	}
	t, err := r.timestamp(column)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func readCSV(path string, handle func(record) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[name] = i
	}

	name := filepath.Base(path)
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s line %d: %w", name, line, err)
		}
		if err := handle(record{file: name, line: line, header: header, fields: fields}); err != nil {
			return err
		}
	}
}
