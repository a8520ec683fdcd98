package routes

import (
	"tableside/configs"
	"tableside/controllers"
	"tableside/middlewares"
	"tableside/ws"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth         *controllers.AuthController
	Tables       *controllers.TableController
	Reservations *controllers.ReservationController
	Orders       *controllers.OrderController
	Billing      *controllers.BillingController
	Menu         *controllers.MenuController
	Promotions   *controllers.PromotionController
	TaxSettings  *controllers.TaxSettingController
	Hub          *ws.NotifyHub
}

func RegisterRoutes(r *gin.Engine, cfg *configs.Config, d Deps) {
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Auth (public)
	a := r.Group("/auth")
	{
		a.POST("/register", d.Auth.Register)
		a.POST("/login", d.Auth.Login)
	}
	a.GET("/me", middlewares.AuthMiddleware(cfg.JWTSecret), d.Auth.Me)

	// Public availability search
	r.GET("/availability", d.Reservations.CheckAvailability)
	r.GET("/menu", d.Menu.List)

	// Staff (any authenticated role)
	staff := r.Group("/", middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		staff.GET("/tables", d.Tables.List)
		staff.POST("/tables/:id/book", d.Tables.Book)
		staff.POST("/tables/:id/release", d.Tables.Release)

		staff.POST("/reservations", d.Reservations.Create)
		staff.GET("/reservations/:id", d.Reservations.Detail)
		staff.POST("/reservations/:id/confirm", d.Reservations.Confirm)
		staff.POST("/reservations/:id/seat", d.Reservations.Seat)
		staff.POST("/reservations/:id/complete", d.Reservations.Complete)
		staff.POST("/reservations/:id/cancel", d.Reservations.Cancel)
		staff.POST("/reservations/:id/no-show", d.Reservations.NoShow)

		staff.POST("/orders/items", d.Orders.AddItem)
		staff.GET("/orders/:id", d.Orders.Detail)
		staff.PATCH("/orders/:id/status", d.Orders.UpdateStatus)
		staff.PATCH("/orders/:id/priority", d.Orders.UpdatePriority)
		staff.PATCH("/order-items/:id", d.Orders.UpdateItemQuantity)
		staff.PATCH("/order-items/:id/status", d.Orders.UpdateItemStatus)
		staff.DELETE("/order-items/:id", d.Orders.RemoveItem)

		staff.POST("/orders/:id/bill", d.Billing.GenerateBill)
		staff.POST("/orders/:id/payments/split", d.Billing.SplitPayment)
		staff.POST("/bills/:id/payments", d.Billing.RecordPayment)
		staff.POST("/orders/:id/promotion", d.Billing.ApplyPromotion)
		staff.GET("/billing/estimate", d.Billing.Estimate)

		staff.GET("/ws/notifications", d.Hub.Handle)
	}

	// Admin
	admin := r.Group("/admin", middlewares.AuthMiddleware(cfg.JWTSecret, "admin"))
	{
		admin.POST("/tables", d.Tables.Create)
		admin.PATCH("/tables/:id/status", d.Tables.UpdateStatus)

		admin.POST("/menu", d.Menu.Create)
		admin.POST("/menu/:id/components", d.Menu.AddComponent)
		admin.PATCH("/menu/:id/active", d.Menu.SetActive)

		admin.GET("/promotions", d.Promotions.List)
		admin.POST("/promotions", d.Promotions.Create)
		admin.PATCH("/promotions/:id/active", d.Promotions.SetActive)
		admin.DELETE("/promotions/:id", d.Promotions.Delete)

		admin.GET("/tax-settings", d.TaxSettings.List)
		admin.POST("/tax-settings", d.TaxSettings.Create)
		admin.POST("/tax-settings/:id/activate", d.TaxSettings.Activate)
	}
}
