package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/config"
	"github.com/mufufarm/farmstore-api/controllers"
	"github.com/mufufarm/farmstore-api/middlewares"
	"github.com/mufufarm/farmstore-api/services"
)

// Deps carries everything the route handlers need. main builds it once.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Orders   *services.OrderService
	Notifier *services.NotificationService
	Paystack *services.PaystackService
	Files    *services.FileStore
}

// servableExtensions limits what the uploads directory will hand out.
var servableExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".pdf"}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())

	// Per-IP limiter sits in front of every route. Zero config disables it,
	// which the tests rely on.
	if d.Config.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(d.Config.RateLimit, d.Config.RateWindowSecs).RateLimit())
	}

	// Serve uploaded files, but only the extensions we ever write.
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			lower := strings.ToLower(c.Request.URL.Path)
			allowed := false
			for _, ext := range servableExtensions {
				if strings.HasSuffix(lower, ext) {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	})
	r.Static("/uploads", d.Config.UploadsDir)

	orderCtrl := controllers.NewOrderController(d.Orders, d.Files)
	productCtrl := controllers.NewProductController(d.DB, d.Files)
	adminCtrl := controllers.NewAdminController(d.DB, d.Orders)
	notificationCtrl := controllers.NewNotificationController(d.DB, d.Notifier)
	paymentCtrl := controllers.NewPaymentController(d.Orders, d.Paystack)
	testimonialCtrl := controllers.NewTestimonialController(d.DB)
	contactCtrl := controllers.NewContactController(d.DB)

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Farm store API is running"})
	}
	r.GET("/", health)
	r.GET("/health", health)

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	api.GET("/device-id", controllers.GetOrCreateDeviceID)

	api.GET("/products", productCtrl.GetAllProducts)
	api.GET("/products/:product_id", productCtrl.GetProductByID)

	api.POST("/orders", orderCtrl.CreateOrder)
	api.GET("/orders/my-orders", orderCtrl.GetUserOrders)
	api.GET("/orders/:order_id", orderCtrl.GetOrderByID)

	api.POST("/payments/initialize", paymentCtrl.InitializePayment)
	api.GET("/payments/verify/:reference", paymentCtrl.VerifyPayment)
	api.POST("/payments/webhook", paymentCtrl.HandleWebhook)

	api.POST("/notifications/register", notificationCtrl.RegisterToken)
	api.DELETE("/notifications/unsubscribe", notificationCtrl.UnsubscribeToken)
	api.POST("/notifications/track-click", notificationCtrl.TrackClick)

	api.GET("/testimonials", testimonialCtrl.GetAllTestimonials)

	api.POST("/contact", contactCtrl.CreateMessage)

	// Rate limiter on login against brute force.
	login := api.Group("/admin")
	login.Use(middlewares.NewStrictRateLimiter())
	{
		login.POST("/login", adminCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := api.Group("/admin")
	admin.Use(middlewares.AdminAuthMiddleware())

	admin.GET("/me", adminCtrl.Me)
	admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)

	admin.GET("/orders", orderCtrl.GetAllOrders)
	admin.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	admin.PUT("/orders/:order_id", orderCtrl.UpdateOrder)
	admin.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)

	admin.POST("/products", productCtrl.CreateProduct)
	admin.PUT("/products/:product_id", productCtrl.UpdateProduct)
	admin.DELETE("/products/:product_id", productCtrl.DeleteProduct)

	// Admin token registration is privileged: an admin device receives every
	// new-order alert, so the flag is only set behind the auth gate.
	admin.POST("/notifications/register", notificationCtrl.RegisterAdminToken)
	admin.POST("/notifications/send", notificationCtrl.SendNotification)
	admin.GET("/notifications/analytics", notificationCtrl.GetAnalytics)
	admin.GET("/notifications/analytics/:notification_id", notificationCtrl.GetAnalyticsDetail)

	admin.POST("/testimonials", testimonialCtrl.CreateTestimonial)
	admin.PUT("/testimonials/:testimonial_id", testimonialCtrl.UpdateTestimonial)
	admin.DELETE("/testimonials/:testimonial_id", testimonialCtrl.DeleteTestimonial)

	admin.GET("/contact-messages", contactCtrl.GetAllMessages)
	admin.PUT("/contact-messages/:message_id/read", contactCtrl.MarkMessageRead)

	return r
}
