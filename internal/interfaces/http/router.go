package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-inventario/internal/application/auth"
	"github.com/jhoicas/pos-inventario/internal/application/pos"
	"github.com/jhoicas/pos-inventario/internal/application/usecase"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	ProductUC  *usecase.ProductUseCase
	VariantUC  *usecase.VariantUseCase
	StockUC    *usecase.StockUseCase
	CategoryUC *usecase.CategoryUseCase
	CustomerUC *usecase.CustomerUseCase
	CartUC     *pos.CartUseCase
	CheckoutUC *pos.CheckoutUseCase
	TabUC      *pos.TabUseCase
	Realtime   *RealtimeHandler
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)

	// Catálogo: lectura para todos, escritura solo admin
	productHandler := NewProductHandler(deps.ProductUC, deps.VariantUC, deps.StockUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Put("/:id/stock", adminOnly, productHandler.AdjustStock)
	products.Get("/:id/movements", productHandler.Movements)
	products.Get("/:id/variants", productHandler.ListVariants)
	products.Post("/:id/variants", adminOnly, productHandler.CreateVariant)

	variants := protected.Group("/variants")
	variants.Put("/:id", adminOnly, productHandler.UpdateVariant)
	variants.Put("/:id/stock", adminOnly, productHandler.AdjustVariantStock)

	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.CategoryUC)
	categories := protected.Group("/categories")
	categories.Get("/", customerHandler.ListCategories)
	categories.Post("/", adminOnly, customerHandler.CreateCategory)

	customers := protected.Group("/customers")
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Caja
	cartHandler := NewCartHandler(deps.CartUC, deps.CheckoutUC, deps.TabUC)
	carts := protected.Group("/carts/:session")
	carts.Get("/", cartHandler.Get)
	carts.Delete("/", cartHandler.Clear)
	carts.Post("/items", cartHandler.AddItem)
	carts.Put("/items/:index", cartHandler.UpdateItem)
	carts.Delete("/items/:index", cartHandler.RemoveItem)
	carts.Put("/customer", cartHandler.SetCustomer)
	carts.Post("/checkout", cartHandler.Checkout)
	carts.Post("/tabs", cartHandler.SaveTab)
	carts.Post("/tabs/:tabID/load", cartHandler.LoadTab)

	protected.Get("/tabs", cartHandler.ListTabs)
	protected.Get("/transactions/:id", cartHandler.GetTransaction)
	protected.Get("/transactions/:id/receipt", cartHandler.Receipt)

	if deps.Realtime != nil {
		protected.Get("/realtime/stock", deps.Realtime.Stream)
	}
}
