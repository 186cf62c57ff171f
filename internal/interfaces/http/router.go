package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/adjustment"
	"github.com/jhoicas/Kardex-api/internal/application/auth"
	"github.com/jhoicas/Kardex-api/internal/application/conversion"
	"github.com/jhoicas/Kardex-api/internal/application/tokens"
	"github.com/jhoicas/Kardex-api/internal/application/transfer"
	"github.com/jhoicas/Kardex-api/internal/application/usecase"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	LocationUC  *usecase.LocationUseCase
	ProductUC   *usecase.ProductUseCase
	StockUC     *usecase.StockQueryUseCase
	Adjustments *adjustment.Engine
	Transfers   *transfer.UseCase
	Conversions *conversion.Engine
	Tokens      *tokens.UseCase
	ManifestPDF ManifestGenerator
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/variants", productHandler.ListVariants)

	// Stock y kardex (solo lectura)
	stockHandler := NewStockHandler(deps.StockUC)
	protected.Get("/stock/:productId/:locationId", stockHandler.GetCell)
	protected.Get("/ledger/entries", stockHandler.ListLedger)

	// Ajustes
	adjustmentHandler := NewAdjustmentHandler(deps.Adjustments)
	protected.Post("/adjustments", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), adjustmentHandler.Create)

	// Traslados
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers, deps.ManifestPDF)
	transfers.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/by-token/:code", transferHandler.ByToken)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Get("/:id/manifest.pdf", transferHandler.Manifest)
	transfers.Post("/:id/receive", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), transferHandler.Receive)
	transfers.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), transferHandler.Cancel)

	// Conversiones
	conversionHandler := NewConversionHandler(deps.Conversions)
	protected.Post("/conversions", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), conversionHandler.Create)

	// Tokens físicos
	tokenGroup := protected.Group("/tokens")
	tokenHandler := NewTokenHandler(deps.Tokens)
	tokenGroup.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), tokenHandler.Create)
	tokenGroup.Get("/:code", tokenHandler.Get)
	tokenGroup.Post("/:code/scan", tokenHandler.Scan)
	tokenGroup.Post("/:code/sold", RequireRole(entity.RoleAdmin, entity.RoleVendedor), tokenHandler.MarkSold)
}
