package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mufufarm/farmstore-api/services"
	"github.com/mufufarm/farmstore-api/utils"
)

type PaymentController struct {
	Orders   *services.OrderService
	Paystack *services.PaystackService
}

func NewPaymentController(orders *services.OrderService, paystack *services.PaystackService) *PaymentController {
	return &PaymentController{Orders: orders, Paystack: paystack}
}

// InitializePayment -> starts a Paystack transaction for an existing order.
func (pc *PaymentController) InitializePayment(c *gin.Context) {
	var body struct {
		Email       string  `json:"email" binding:"required,email"`
		Amount      float64 `json:"amount" binding:"required"` // naira
		OrderID     uint    `json:"order_id" binding:"required"`
		CallbackURL string  `json:"callback_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// The order must exist before money moves.
	if _, err := pc.Orders.GetOrder(body.OrderID); err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	amountKobo := int64(body.Amount * 100)
	data, err := pc.Paystack.InitializeTransaction(body.Email, amountKobo, body.CallbackURL,
		services.PaystackMetadata{OrderID: body.OrderID})
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment initialized", data)
}

// VerifyPayment -> read-through to the gateway; a successful charge confirms
// the referenced order once.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")

	data, err := pc.Paystack.VerifyTransaction(reference)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	if pc.Paystack.MapStatus(data.Status) != "success" {
		utils.RespondJSON(c, http.StatusOK, "Payment failed or pending", data)
		return
	}

	pc.settleOrder(c, data.Metadata.OrderID)

	utils.RespondJSON(c, http.StatusOK, "Payment successful", data)
}

// paystackWebhookEvent is the slice of the webhook payload this handler
// cares about.
type paystackWebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Status    string                    `json:"status"`
		Reference string                    `json:"reference"`
		Metadata  services.PaystackMetadata `json:"metadata"`
	} `json:"data"`
}

// HandleWebhook -> Paystack server-to-server callback. The signature check
// is a hard gate: nothing is processed unless the HMAC over the raw body
// matches, and the response does not say which part of the check failed.
func (pc *PaymentController) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if !pc.Paystack.ValidateWebhookSignature(body, signature) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid signature"))
		return
	}

	var event paystackWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid payload"))
		return
	}

	if event.Event == "charge.success" {
		if event.Data.Metadata.OrderID == 0 {
			utils.InfoLogger.Println("Webhook: no order_id in metadata")
		} else {
			pc.settleOrder(c, event.Data.Metadata.OrderID)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Webhook received", nil)
}

// settleOrder confirms a pending order and notifies admins. Re-delivery of
// the same event finds the order already confirmed and does nothing, so the
// admin push cannot double-fire.
func (pc *PaymentController) settleOrder(c *gin.Context, orderID uint) {
	order, confirmed, err := pc.Orders.ConfirmPaidOrder(orderID)
	if err != nil {
		utils.ErrorLogger.Printf("Webhook: could not confirm order %d: %v", orderID, err)
		return
	}
	if confirmed {
		utils.InfoLogger.Printf("Payment confirmed for order %d", order.ID)
		pc.Orders.NotifyAdminNewOrder(c.Request.Context(), order, "New Paystack Order")
	}
}
