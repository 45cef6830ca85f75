package analyze

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/facts"
	"github.com/storelens/storelens/internal/models"
)

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		AsOfDate:              "2018-09-01",
		ParetoThreshold:       config.DefaultParetoThreshold,
		PriceIncreasePct:      config.DefaultPriceIncreasePct,
		RetentionMultiplier:   config.DefaultRetentionMultiplier,
		ChurnLossMultiplier:   config.DefaultChurnLossMultiplier,
		ExpansionMultiplier:   config.DefaultExpansionMultiplier,
		CohortStartMonth:      config.DefaultCohortStartMonth,
		MinOrdersForPricing:   1,
		MinCategorySampleSize: config.DefaultMinCategorySampleSize,
	}
}

// fixture assembles a minimal consistent snapshot. A single seller backs
// every order line; reviews and extra entities attach explicitly.
type fixture struct {
	snap    models.Snapshot
	orderN  int
	reviewN int
}

func newFixture() *fixture {
	f := &fixture{}
	f.snap.Sellers = []models.Seller{{ID: "seller-1", City: "sao paulo", State: "SP"}}
	return f
}

func (f *fixture) addCategory(name, display string) {
	f.snap.Categories = append(f.snap.Categories, models.Category{Name: name, DisplayName: display})
}

func (f *fixture) addProduct(id, category string) {
	f.snap.Products = append(f.snap.Products, models.Product{ID: id, Category: category})
}

func (f *fixture) addCustomer(id, uniqueID, state string) {
	f.snap.Customers = append(f.snap.Customers, models.Customer{ID: id, UniqueID: uniqueID, State: state})
}

// addDelivered appends one delivered single-line order and returns its id.
func (f *fixture) addDelivered(customerID, productID string, price, freight float64, purchased string) string {
	f.orderN++
	id := fmt.Sprintf("order-%d", f.orderN)
	bought := at(purchased)
	delivered := bought.AddDate(0, 0, 7)
	f.snap.Orders = append(f.snap.Orders, models.Order{
		ID:                  id,
		CustomerID:          customerID,
		Status:              models.OrderStatusDelivered,
		PurchasedAt:         bought,
		DeliveredAt:         &delivered,
		EstimatedDeliveryAt: bought.AddDate(0, 0, 14),
	})
	f.snap.Items = append(f.snap.Items, models.OrderItem{
		OrderID: id, Seq: 1, ProductID: productID, SellerID: "seller-1",
		Price: price, Freight: freight,
	})
	return id
}

func (f *fixture) addReview(orderID string, score int) {
	f.reviewN++
	f.snap.Reviews = append(f.snap.Reviews, models.Review{
		ID:        fmt.Sprintf("review-%d", f.reviewN),
		OrderID:   orderID,
		Score:     score,
		CreatedAt: at("2018-08-01"),
	})
}

func (f *fixture) model(t *testing.T) *facts.Model {
	t.Helper()
	m, err := facts.Build(&f.snap, nil)
	require.NoError(t, err)
	return m
}
