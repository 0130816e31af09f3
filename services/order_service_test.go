package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/utils"
)

func setupOrderServiceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:orders_svc?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{}, &models.Order{}, &models.OrderItem{},
		&models.DeviceToken{}, &models.Notification{}, &models.NotificationRecipient{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Exec("DELETE FROM order_items")
	db.Exec("DELETE FROM orders")
	db.Exec("DELETE FROM products")
	db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('order_items', 'orders', 'products')")
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, available bool) models.Product {
	p := models.Product{Name: name, Price: price, Unit: "kg", Icon: "🐟", Available: available}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func TestCreateOrderComputesTotalsServerSide(t *testing.T) {
	utils.InitLogger()
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db, nil, 10_000_000, 1000)

	catfish := seedProduct(t, db, "Catfish", 1500, true)
	tilapia := seedProduct(t, db, "Tilapia", 1200, true)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerName:  "Ada Obi",
		CustomerPhone: "08012345678",
		Items: []OrderItemInput{
			{ProductID: int(catfish.ID), Quantity: 2},
			{ProductID: int(tilapia.ID), Quantity: 3},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, float64(2*1500+3*1200), order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.OrderItems, 2)
	assert.Equal(t, "Catfish", order.OrderItems[0].ProductName)
	assert.Equal(t, float64(3000), order.OrderItems[0].Subtotal)
}

func TestCreateOrderValidation(t *testing.T) {
	utils.InitLogger()
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db, nil, 10_000, 10)

	available := seedProduct(t, db, "Catfish", 1500, true)
	unavailable := seedProduct(t, db, "Off menu", 900, false)
	free := seedProduct(t, db, "Broken", 0, true)

	valid := []OrderItemInput{{ProductID: int(available.ID), Quantity: 1}}

	tests := []struct {
		name     string
		input    CreateOrderInput
		notFound bool
	}{
		{
			name:  "empty customer name",
			input: CreateOrderInput{CustomerName: "  ", CustomerPhone: "080", Items: valid},
		},
		{
			name:  "empty phone",
			input: CreateOrderInput{CustomerName: "Ada", CustomerPhone: "", Items: valid},
		},
		{
			name:  "no items",
			input: CreateOrderInput{CustomerName: "Ada", CustomerPhone: "080"},
		},
		{
			name: "zero quantity",
			input: CreateOrderInput{CustomerName: "Ada", CustomerPhone: "080",
				Items: []OrderItemInput{{ProductID: int(available.ID), Quantity: 0}}},
		},
		{
			name: "quantity above limit",
			input: CreateOrderInput{CustomerName: "Ada", CustomerPhone: "080",
				Items: []OrderItemInput{{ProductID: int(available.ID), Quantity: 11}}},
		},
		{
			name: "unknown product",
			input: CreateOrderInput{CustomerName: "Ada", CustomerPhone: "080",
				Items: []OrderItemInput{{ProductID: 9999, Quantity: 1}}},
			notFound: true,
		},
		{
			name: "unavailable product",
			input: CreateOrderInput{CustomerName: "Ada", CustomerPhone: "080",
				Items: []OrderItemInput{{ProductID: int(unavailable.ID), Quantity: 1}}},
		},
		{
			name: "zero priced product",
			input: CreateOrderInput{CustomerName: "Ada", CustomerPhone: "080",
				Items: []OrderItemInput{{ProductID: int(free.ID), Quantity: 1}}},
		},
		{
			name: "total above cap",
			input: CreateOrderInput{CustomerName: "Ada", CustomerPhone: "080",
				Items: []OrderItemInput{{ProductID: int(available.ID), Quantity: 7}}}, // 10500 > 10000
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), tt.input)
			assert.Error(t, err)
			if tt.notFound {
				var notFoundErr *utils.NotFoundError
				assert.ErrorAs(t, err, &notFoundErr)
			} else {
				var validationErr *utils.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			}
		})
	}

	// None of the rejected orders left rows behind.
	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)
}

func TestConfirmPaidOrderRunsOnce(t *testing.T) {
	utils.InitLogger()
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db, nil, 10_000_000, 1000)

	order := models.Order{CustomerName: "Ada", CustomerPhone: "080", TotalAmount: 100, Status: models.OrderStatusPending}
	db.Create(&order)

	confirmed, did, err := svc.ConfirmPaidOrder(order.ID)
	assert.NoError(t, err)
	assert.True(t, did)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.Status)

	// Second confirmation is a no-op.
	again, did, err := svc.ConfirmPaidOrder(order.ID)
	assert.NoError(t, err)
	assert.False(t, did)
	assert.Equal(t, models.OrderStatusConfirmed, again.Status)

	// Already-completed orders are never pulled back.
	_, err = svc.UpdateOrderStatus(order.ID, models.OrderStatusCompleted)
	assert.NoError(t, err)
	_, did, err = svc.ConfirmPaidOrder(order.ID)
	assert.NoError(t, err)
	assert.False(t, did)
}

func TestListOrdersFilters(t *testing.T) {
	utils.InitLogger()
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db, nil, 10_000_000, 1000)

	deviceA := "dev-a"
	db.Create(&models.Order{CustomerName: "One", CustomerPhone: "1", TotalAmount: 100, Status: "pending", DeviceID: &deviceA})
	db.Create(&models.Order{CustomerName: "Two", CustomerPhone: "2", TotalAmount: 200, Status: "completed"})
	db.Create(&models.Order{CustomerName: "Three", CustomerPhone: "3", TotalAmount: 300, Status: "cancelled"})

	byStatus, err := svc.ListOrders(OrderFilters{Status: "pending,completed"})
	assert.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byDevice, err := svc.ListOrders(OrderFilters{DeviceID: deviceA})
	assert.NoError(t, err)
	assert.Len(t, byDevice, 1)
	assert.Equal(t, "One", byDevice[0].CustomerName)

	// Search by id, "#" prefix tolerated.
	bySearch, err := svc.ListOrders(OrderFilters{Search: "#2"})
	assert.NoError(t, err)
	assert.Len(t, bySearch, 1)
	assert.Equal(t, "Two", bySearch[0].CustomerName)

	// Non-numeric search matches nothing rather than erroring.
	noMatch, err := svc.ListOrders(OrderFilters{Search: "garbage"})
	assert.NoError(t, err)
	assert.Len(t, noMatch, 0)

	// The date filter matches the full calendar day in server-local time.
	twoDaysAgo := time.Now().AddDate(0, 0, -2)
	assert.NoError(t, db.Model(&models.Order{}).
		Where("customer_name = ?", "Three").
		Update("created_at", twoDaysAgo).Error)

	today, err := svc.ListOrders(OrderFilters{Date: time.Now().Format("2006-01-02")})
	assert.NoError(t, err)
	assert.Len(t, today, 2)

	backDated, err := svc.ListOrders(OrderFilters{Date: twoDaysAgo.Format("2006-01-02")})
	assert.NoError(t, err)
	assert.Len(t, backDated, 1)
	assert.Equal(t, "Three", backDated[0].CustomerName)

	// A day nothing was ordered on is empty, not an error.
	emptyDay, err := svc.ListOrders(OrderFilters{Date: time.Now().AddDate(0, 0, -10).Format("2006-01-02")})
	assert.NoError(t, err)
	assert.Len(t, emptyDay, 0)
}

func TestDashboardStats(t *testing.T) {
	utils.InitLogger()
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db, nil, 10_000_000, 1000)

	seedProduct(t, db, "Catfish", 1500, true)
	seedProduct(t, db, "Retired", 900, false)

	db.Create(&models.Order{CustomerName: "A", CustomerPhone: "1", TotalAmount: 100, Status: "pending"})
	db.Create(&models.Order{CustomerName: "B", CustomerPhone: "2", TotalAmount: 200, Status: "completed"})
	db.Create(&models.Order{CustomerName: "C", CustomerPhone: "3", TotalAmount: 300, Status: "completed"})

	stats, err := svc.GetDashboardStats()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(2), stats.CompletedOrders)
	assert.Equal(t, float64(500), stats.TotalRevenue)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.ActiveProducts)
}

func TestDeleteOrderRemovesItems(t *testing.T) {
	utils.InitLogger()
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db, nil, 10_000_000, 1000)

	catfish := seedProduct(t, db, "Catfish", 1500, true)
	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerName:  "Ada",
		CustomerPhone: "080",
		Items:         []OrderItemInput{{ProductID: int(catfish.ID), Quantity: 1}},
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.DeleteOrder(order.ID))

	var orders, items int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderItem{}).Count(&items)
	assert.Equal(t, int64(0), orders)
	assert.Equal(t, int64(0), items)
}
