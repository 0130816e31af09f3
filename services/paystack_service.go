package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mufufarm/farmstore-api/utils"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackConfig holds Paystack API configuration.
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

// PaystackService talks to the Paystack REST API and validates inbound
// webhook signatures. It never mutates local order state; callers decide
// what a gateway result means for an order.
type PaystackService struct {
	config     *PaystackConfig
	httpClient *http.Client
}

func NewPaystackService(secretKey string) *PaystackService {
	return NewPaystackServiceWithConfig(&PaystackConfig{
		SecretKey: secretKey,
		BaseURL:   paystackBaseURL,
	})
}

func NewPaystackServiceWithConfig(config *PaystackConfig) *PaystackService {
	if config.BaseURL == "" {
		config.BaseURL = paystackBaseURL
	}
	return &PaystackService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether a secret key is present. Payment endpoints
// refuse to operate without one.
func (ps *PaystackService) Configured() bool {
	return ps.config.SecretKey != ""
}

// PaystackMetadata is the metadata blob attached at initialization and echoed
// back on verify/webhook. Paystack sometimes returns it as a JSON string.
type PaystackMetadata struct {
	OrderID uint `json:"order_id"`
}

func (m *PaystackMetadata) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(s)
	}
	type alias PaystackMetadata
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		// Tolerate unknown metadata shapes; a zero order id is handled upstream.
		return nil
	}
	*m = PaystackMetadata(a)
	return nil
}

// PaystackInitData is the payload the client needs to complete checkout.
type PaystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// PaystackVerifyData is the transaction state returned by verify.
type PaystackVerifyData struct {
	Status    string           `json:"status"` // success, failed, abandoned, ...
	Reference string           `json:"reference"`
	Amount    int64            `json:"amount"` // kobo
	Metadata  PaystackMetadata `json:"metadata"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction starts a Paystack transaction. Amount is in kobo.
func (ps *PaystackService) InitializeTransaction(email string, amountKobo int64, callbackURL string, metadata PaystackMetadata) (*PaystackInitData, error) {
	if !ps.Configured() {
		return nil, utils.NewGatewayError("paystack", "secret key not configured")
	}

	payload := map[string]interface{}{
		"email":    email,
		"amount":   amountKobo,
		"metadata": metadata,
	}
	if callbackURL != "" {
		payload["callback_url"] = callbackURL
	}

	var data PaystackInitData
	if err := ps.post("/transaction/initialize", payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// VerifyTransaction is a pure read-through to the provider.
func (ps *PaystackService) VerifyTransaction(reference string) (*PaystackVerifyData, error) {
	if !ps.Configured() {
		return nil, utils.NewGatewayError("paystack", "secret key not configured")
	}

	var data PaystackVerifyData
	if err := ps.get("/transaction/verify/"+reference, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ValidateWebhookSignature checks the x-paystack-signature header: an
// HMAC-SHA512 of the raw body keyed with the secret, compared in constant
// time. Missing secret or signature always fails.
func (ps *PaystackService) ValidateWebhookSignature(body []byte, signature string) bool {
	if ps.config.SecretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(ps.config.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// MapStatus maps a Paystack transaction status onto the internal set.
func (ps *PaystackService) MapStatus(status string) string {
	switch status {
	case "success":
		return "success"
	case "failed", "abandoned", "reversed":
		return "failed"
	default:
		return "pending"
	}
}

func (ps *PaystackService) post(path string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ps.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ps.config.SecretKey)

	return ps.do(req, out)
}

func (ps *PaystackService) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, ps.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+ps.config.SecretKey)

	return ps.do(req, out)
}

func (ps *PaystackService) do(req *http.Request, out interface{}) error {
	resp, err := ps.httpClient.Do(req)
	if err != nil {
		return utils.NewGatewayError("paystack", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.NewGatewayError("paystack", "error reading response: "+err.Error())
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return utils.NewGatewayError("paystack", "invalid response from provider")
	}
	if resp.StatusCode != http.StatusOK || !envelope.Status {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		return utils.NewGatewayError("paystack", message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return utils.NewGatewayError("paystack", "invalid response data from provider")
	}
	return nil
}
