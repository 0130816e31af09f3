package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mufufarm/farmstore-api/services"
	"github.com/mufufarm/farmstore-api/utils"
)

type OrderController struct {
	Orders *services.OrderService
	Files  *services.FileStore
}

func NewOrderController(orders *services.OrderService, files *services.FileStore) *OrderController {
	return &OrderController{Orders: orders, Files: files}
}

// CreateOrder -> public order intake. Multipart form with an optional
// payment proof file; items arrive as a JSON array string.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(services.MaxUploadSize); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("error processing form"))
		return
	}

	var items []services.OrderItemInput
	if err := json.Unmarshal([]byte(c.PostForm("items")), &items); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid items format"))
		return
	}

	input := services.CreateOrderInput{
		CustomerName:  c.PostForm("customer_name"),
		CustomerPhone: c.PostForm("customer_phone"),
		PaymentMethod: c.DefaultPostForm("payment_method", "transfer"),
		Items:         items,
	}

	if addr := c.PostForm("delivery_address"); addr != "" {
		input.DeliveryAddress = &addr
	}

	// Device identity comes from the form or falls back to the cookie minted
	// by /api/device-id.
	deviceID := c.PostForm("device_id")
	if deviceID == "" {
		deviceID, _ = c.Cookie("device_id")
	}
	if deviceID != "" {
		input.DeviceID = &deviceID
	}

	// The proof file is written before the order row. If the order never
	// commits we remove the file again so nothing orphaned is left behind.
	var proofURL string
	if fh, err := c.FormFile("payment_proof"); err == nil && fh != nil {
		proofURL, err = oc.Files.SavePaymentProof(fh)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		input.PaymentProofURL = &proofURL
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), input)
	if err != nil {
		if proofURL != "" {
			oc.Files.Remove(proofURL)
		}
		utils.RespondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders -> admin listing with status/date/search filters.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	orders, err := oc.Orders.ListOrders(services.OrderFilters{
		Status: c.Query("status_filter"),
		Date:   c.Query("date"),
		Search: c.Query("search"),
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetUserOrders -> orders for the requesting device. The user_id query
// parameter is an alias for the device identifier kept for older clients.
func (oc *OrderController) GetUserOrders(c *gin.Context) {
	deviceID := c.Query("user_id")
	if deviceID == "" {
		deviceID, _ = c.Cookie("device_id")
	}
	if deviceID == "" {
		utils.RespondJSON(c, http.StatusOK, "List of orders", []struct{}{})
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	orders, err := oc.Orders.ListOrders(services.OrderFilters{
		Status:   c.Query("status_filter"),
		DeviceID: deviceID,
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail of one order including items.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	order, err := oc.Orders.GetOrder(uint(id))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrder -> admin overwrites the order status.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateOrderStatus(uint(id), req.Status)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// DeleteOrder -> removes the order and its items.
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	if err := oc.Orders.DeleteOrder(uint(id)); err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": id})
}
