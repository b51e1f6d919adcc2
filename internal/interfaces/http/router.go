package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/internal/application/analytics"
	"github.com/jhoicas/Tienda-api/internal/application/auth"
	"github.com/jhoicas/Tienda-api/internal/application/cart"
	"github.com/jhoicas/Tienda-api/internal/application/order"
	"github.com/jhoicas/Tienda-api/internal/application/payment"
	"github.com/jhoicas/Tienda-api/internal/application/usecase"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Guard       SessionGuard
	AuthUC      *auth.AuthUseCase
	Cookies     CookieConfig
	ProductUC   *usecase.ProductUseCase
	UserUC      *usecase.UserUseCase
	CartUC      *cart.CartUseCase
	CheckoutUC  *order.CheckoutUseCase
	OrderUC     *order.OrderUseCase
	PaymentUC   *payment.PaymentUseCase
	DashboardUC *analytics.DashboardUseCase
}

// Router registra las rutas de la API bajo /api/v1.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")
	authed := AuthMiddleware(deps.Guard)
	admin := RequireRole(deps.Guard, entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookies)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refreshtoken", authHandler.Refresh)
	authGroup.Get("/logout", authHandler.Logout)
	authGroup.Get("/me", authed, authHandler.Me)
	authGroup.Put("/updatedetails", authed, authHandler.UpdateDetails)
	authGroup.Put("/updatepassword", authed, authHandler.UpdatePassword)

	// Products (lectura pública)
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", authed, admin, productHandler.Create)
	products.Put("/:id", authed, admin, productHandler.Update)
	products.Delete("/:id", authed, admin, productHandler.Delete)

	// Cart
	cartHandler := NewCartHandler(deps.CartUC)
	carts := api.Group("/cart", authed)
	carts.Get("/", cartHandler.View)
	carts.Post("/", cartHandler.AddItem)
	carts.Delete("/", cartHandler.Clear)
	carts.Patch("/:itemId", cartHandler.UpdateItem)
	carts.Delete("/:itemId", cartHandler.RemoveItem)

	// Orders (admin/all antes de :id)
	orderHandler := NewOrderHandler(deps.CheckoutUC, deps.OrderUC)
	orders := api.Group("/orders", authed)
	orders.Get("/admin/all", admin, orderHandler.ListAll)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.ListMine)
	orders.Get("/:id", orderHandler.Get)
	orders.Patch("/:id/status", admin, orderHandler.UpdateStatus)

	// Payments (webhook público, firmado)
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	payments := api.Group("/payments")
	payments.Post("/webhook", paymentHandler.Webhook)
	payments.Post("/create-intent", authed, paymentHandler.CreateIntent)
	payments.Post("/confirm", authed, paymentHandler.Confirm)
	payments.Get("/receipt/:orderId", authed, paymentHandler.Receipt)

	// Admin
	userHandler := NewAdminUserHandler(deps.UserUC)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	adminGroup := api.Group("/admin", authed, admin)
	adminGroup.Get("/users", userHandler.List)
	adminGroup.Get("/users/:id", userHandler.Get)
	adminGroup.Patch("/users/:id/role", userHandler.UpdateRole)
	adminGroup.Get("/dashboard", dashboardHandler.GetSummary)
	adminGroup.Get("/sales-report", dashboardHandler.SalesReport)
}
