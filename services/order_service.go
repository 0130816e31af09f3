package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/utils"
)

// OrderService orchestrates order creation: it validates items against the
// catalog, derives totals server-side, persists order and items atomically
// and notifies admin devices best-effort after commit.
type OrderService struct {
	DB       *gorm.DB
	Notifier *NotificationService

	MaxTotal    float64
	MaxQuantity int
}

func NewOrderService(db *gorm.DB, notifier *NotificationService, maxTotal float64, maxQuantity int) *OrderService {
	return &OrderService{
		DB:          db,
		Notifier:    notifier,
		MaxTotal:    maxTotal,
		MaxQuantity: maxQuantity,
	}
}

type OrderItemInput struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress *string
	DeviceID        *string
	PaymentProofURL *string
	PaymentMethod   string
	Items           []OrderItemInput
}

// CreateOrder validates and persists a new order. No rows are written unless
// every item passes validation; the order and its items commit as one unit.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, utils.NewValidationError("customer_name", "must not be empty")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		return nil, utils.NewValidationError("customer_phone", "must not be empty")
	}
	if len(input.Items) == 0 {
		return nil, utils.NewValidationError("items", "order must contain at least one item")
	}

	var (
		total      float64
		orderItems []models.OrderItem
	)

	for i, item := range input.Items {
		if item.ProductID <= 0 {
			return nil, utils.NewValidationError(
				fmt.Sprintf("items[%d].product_id", i), "must be a positive integer")
		}
		if item.Quantity <= 0 {
			return nil, utils.NewValidationError(
				fmt.Sprintf("items[%d].quantity", i), "must be greater than 0")
		}
		if item.Quantity > s.MaxQuantity {
			return nil, utils.NewValidationError(
				fmt.Sprintf("items[%d].quantity", i),
				fmt.Sprintf("cannot exceed %d items per product", s.MaxQuantity))
		}

		var product models.Product
		if err := s.DB.First(&product, item.ProductID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, utils.NewNotFoundError("product", item.ProductID)
			}
			return nil, err
		}
		if !product.Available {
			return nil, utils.NewValidationError(
				fmt.Sprintf("items[%d]", i),
				fmt.Sprintf("product %s is not available", product.Name))
		}
		if product.Price <= 0 {
			return nil, utils.NewValidationError(
				fmt.Sprintf("items[%d]", i),
				fmt.Sprintf("product %s has invalid price", product.Name))
		}

		subtotal := product.Price * float64(item.Quantity)
		total += subtotal

		orderItems = append(orderItems, models.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     item.Quantity,
			Subtotal:     subtotal,
		})
	}

	if total <= 0 {
		return nil, utils.NewValidationError("total_amount", "order total must be greater than 0")
	}
	if total > s.MaxTotal {
		return nil, utils.NewValidationError("total_amount", "order total exceeds maximum allowed amount")
	}

	order := models.Order{
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		DeliveryAddress: input.DeliveryAddress,
		TotalAmount:     total,
		PaymentProofURL: input.PaymentProofURL,
		DeviceID:        input.DeviceID,
		Status:          models.OrderStatusPending,
		OrderItems:      orderItems,
	}

	tx := s.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	// Creating the order with its items attached inserts all rows inside the
	// same transaction.
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// Transfer orders notify immediately; Paystack orders notify after the
	// gateway confirms payment. Notification failures never undo the order.
	if input.PaymentMethod != "paystack" {
		s.NotifyAdminNewOrder(ctx, &order, "New Order Received")
	}

	return &order, nil
}

// NotifyAdminNewOrder pushes an order alert to admin devices. Errors are
// logged and swallowed; the order is already committed.
func (s *OrderService) NotifyAdminNewOrder(ctx context.Context, order *models.Order, title string) {
	if s.Notifier == nil {
		return
	}
	message := fmt.Sprintf("New order from %s - %s", order.CustomerName, utils.FormatNaira(order.TotalAmount))
	if _, err := s.Notifier.SendToAdmins(ctx, title, message, "/admin/orders"); err != nil {
		utils.ErrorLogger.Printf("Failed to send admin notification for order %d: %v", order.ID, err)
	}
}

// GetOrder returns the order with its items in creation order.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("order", orderID)
		}
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus overwrites the status unconditionally. No transition
// table is enforced here; admin tooling is trusted.
func (s *OrderService) UpdateOrderStatus(orderID uint, status string) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	if err := s.DB.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmPaidOrder transitions a pending order to confirmed. Returns false
// without touching the row when the order already left pending, which makes
// webhook re-delivery a no-op.
func (s *OrderService) ConfirmPaidOrder(orderID uint) (*models.Order, bool, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, false, err
	}
	if order.Status != models.OrderStatusPending {
		return order, false, nil
	}
	order.Status = models.OrderStatusConfirmed
	order.UpdatedAt = time.Now()
	if err := s.DB.Save(order).Error; err != nil {
		return nil, false, err
	}
	return order, true, nil
}

func (s *OrderService) DeleteOrder(orderID uint) error {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return err
	}

	// Items go first; SQLite does not enforce the cascade for us.
	tx := s.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Order{}, order.ID).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type OrderFilters struct {
	Status   string // single value or comma-separated set
	Date     string // YYYY-MM-DD, matched against the server-local day
	Search   string // free-text order id, "#" prefix tolerated
	DeviceID string
	Skip     int
	Limit    int
}

// ListOrders returns orders newest-first. A search string that is not an
// integer matches zero rows instead of erroring.
func (s *OrderService) ListOrders(f OrderFilters) ([]models.Order, error) {
	query := s.DB.Model(&models.Order{}).Preload("OrderItems")

	if f.Status != "" {
		statuses := splitStatuses(f.Status)
		if len(statuses) == 1 {
			query = query.Where("status = ?", statuses[0])
		} else if len(statuses) > 1 {
			query = query.Where("status IN ?", statuses)
		}
	}

	if f.Date != "" {
		if day, err := time.ParseInLocation("2006-01-02", f.Date, time.Local); err == nil {
			query = query.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
	}

	if f.Search != "" {
		id, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(f.Search, "#", "")))
		if err != nil {
			id = -1
		}
		query = query.Where("id = ?", id)
	}

	if f.DeviceID != "" {
		query = query.Where("device_id = ?", f.DeviceID)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Offset(f.Skip).Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func splitStatuses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DashboardStats aggregates the numbers shown on the admin dashboard.
type DashboardStats struct {
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	CompletedOrders int64   `json:"completed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalProducts   int64   `json:"total_products"`
	ActiveProducts  int64   `json:"active_products"`
}

func (s *OrderService) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := s.DB.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).Count(&stats.CompletedOrders).Error; err != nil {
		return nil, err
	}

	// Revenue sums completed orders in SQL rather than loading rows.
	var revenue *float64
	if err := s.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("SUM(total_amount)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue != nil {
		stats.TotalRevenue = *revenue
	}

	if err := s.DB.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Product{}).
		Where("available = ?", true).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
