package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/config"
	"github.com/mufufarm/farmstore-api/controllers"
	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/router"
	"github.com/mufufarm/farmstore-api/services"
	"github.com/mufufarm/farmstore-api/utils"
)

const integrationPaystackSecret = "sk_test_integration"

func TestMain(m *testing.M) {
	utils.InitLogger()
	if err := utils.InitJWT("integration-test-secret", 30*time.Minute); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks the main storefront flow:
// 1. Admin login -> token
// 2. Admin creates a product
// 3. Customer fetches a device id and places an order
// 4. Paystack webhook confirms the payment
// 5. Admin sees the confirmed order and marks it completed
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(t, db)

	token := loginTest(t, r)
	productID := createProductTest(t, r, token)
	deviceID := deviceIDTest(t, r)
	orderID := createOrderTest(t, r, productID, deviceID)
	webhookConfirmTest(t, r, orderID)
	completeOrderTest(t, r, token, orderID)
	dashboardTest(t, r, token)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.Admin{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.DeviceToken{},
		&models.Notification{},
		&models.NotificationRecipient{},
		&models.Testimonial{},
		&models.ContactMessage{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	if err := controllers.SeedAdmin(db, "admin", "secret-password"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	return db
}

func setupTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	cfg := &config.Config{
		CORSOrigins: []string{"http://localhost:3000"},
		UploadsDir:  t.TempDir(),
	}

	files := services.NewFileStore(cfg.UploadsDir)
	if err := files.EnsureDirs(); err != nil {
		t.Fatalf("failed to prepare uploads dir: %v", err)
	}

	notifier := services.NewNotificationService(db, nil)
	orders := services.NewOrderService(db, notifier, 10_000_000, 1000)
	paystack := services.NewPaystackService(integrationPaystackSecret)

	return router.SetupRouter(router.Deps{
		DB:       db,
		Config:   cfg,
		Orders:   orders,
		Notifier: notifier,
		Paystack: paystack,
		Files:    files,
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginTest(t *testing.T, r *gin.Engine) string {
	w := doJSON(t, r, "POST", "/api/admin/login", "", map[string]string{
		"username": "admin",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	token := data["access_token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, "bearer", data["token_type"])

	// A wrong password never gets a token.
	w = doJSON(t, r, "POST", "/api/admin/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	return token
}

func createProductTest(t *testing.T, r *gin.Engine, token string) int {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	assert.NoError(t, writer.WriteField("name", "Fresh Catfish"))
	assert.NoError(t, writer.WriteField("price", "1500"))
	assert.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", "/api/admin/products", body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	id := int(resp["data"].(map[string]interface{})["id"].(float64))

	// The same request without a token is rejected.
	body2 := &bytes.Buffer{}
	writer2 := multipart.NewWriter(body2)
	assert.NoError(t, writer2.WriteField("name", "No auth"))
	assert.NoError(t, writer2.WriteField("price", "100"))
	assert.NoError(t, writer2.Close())
	req, _ = http.NewRequest("POST", "/api/admin/products", body2)
	req.Header.Set("Content-Type", writer2.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	return id
}

func deviceIDTest(t *testing.T, r *gin.Engine) string {
	req, _ := http.NewRequest("GET", "/api/device-id", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	deviceID := resp["data"].(map[string]interface{})["device_id"].(string)
	assert.NotEmpty(t, deviceID)
	return deviceID
}

func createOrderTest(t *testing.T, r *gin.Engine, productID int, deviceID string) int {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	assert.NoError(t, writer.WriteField("customer_name", "Ada Obi"))
	assert.NoError(t, writer.WriteField("customer_phone", "08012345678"))
	assert.NoError(t, writer.WriteField("device_id", deviceID))
	assert.NoError(t, writer.WriteField("payment_method", "paystack"))
	assert.NoError(t, writer.WriteField("items", fmt.Sprintf(`[{"product_id":%d,"quantity":2}]`, productID)))
	assert.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", "/api/orders", body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3000), data["total_amount"])
	assert.Equal(t, "pending", data["status"])
	return int(data["id"].(float64))
}

func webhookConfirmTest(t *testing.T, r *gin.Engine, orderID int) {
	payload := []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"status":"success","reference":"ref-int","metadata":{"order_id":%d}}}`,
		orderID))

	mac := hmac.New(sha512.New, []byte(integrationPaystackSecret))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	req, _ := http.NewRequest("POST", "/api/payments/webhook", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The order is now confirmed.
	w = doJSON(t, r, "GET", fmt.Sprintf("/api/orders/%d", orderID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp["data"].(map[string]interface{})["status"])
}

func completeOrderTest(t *testing.T, r *gin.Engine, token string, orderID int) {
	w := doJSON(t, r, "PUT", fmt.Sprintf("/api/admin/orders/%d", orderID), token,
		map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["data"].(map[string]interface{})["status"])
}

func dashboardTest(t *testing.T, r *gin.Engine, token string) {
	w := doJSON(t, r, "GET", "/api/admin/dashboard/stats", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_orders"])
	assert.Equal(t, float64(1), data["completed_orders"])
	assert.Equal(t, float64(3000), data["total_revenue"])
}
