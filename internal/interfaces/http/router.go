package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/marketplace"
	"github.com/jhoicas/bodegas-api/internal/application/purchase"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/events"
	"github.com/jhoicas/bodegas-api/pkg/jwt"
)

// RouterDeps dependencias para el router. Marketplace, SyncEnqueuer y Hub son opcionales.
type RouterDeps struct {
	WarehouseUC  *usecase.WarehouseUseCase
	ProductUC    *usecase.ProductUseCase
	Movements    *inventory.MovementUseCase
	Transfers    *inventory.TransferUseCase
	Purchases    *purchase.UseCase
	Marketplace  *marketplace.SyncUseCase
	SyncEnqueuer SyncEnqueuer
	Hub          *events.Hub
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Feed en vivo: los navegadores no envían headers en el upgrade, se deja fuera del grupo protegido.
	if deps.Hub != nil {
		app.Use("/ws", events.Upgrade)
		app.Get("/ws", deps.Hub.Handler())
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)
	operators := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	admins := RequireRole(jwt.RoleAdmin)

	// Bodegas
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", anyRole, warehouseHandler.List)
	warehouses.Get("/:id", anyRole, warehouseHandler.GetByID)
	warehouses.Post("/", admins, warehouseHandler.Create)
	warehouses.Put("/:id", admins, warehouseHandler.Update)
	warehouses.Delete("/:id", admins, warehouseHandler.Delete)

	// Productos
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/code/:code", anyRole, productHandler.GetByCode)
	products.Get("/barcode/:barcode", anyRole, productHandler.GetByBarcode)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Post("/", admins, productHandler.Create)
	products.Put("/:id", admins, productHandler.Update)
	products.Delete("/:id", admins, productHandler.Delete)

	// Libro de movimientos
	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.Movements)
	movements.Get("/", anyRole, movementHandler.List)
	movements.Get("/:id", anyRole, movementHandler.GetByID)
	movements.Post("/", operators, movementHandler.Create)
	movements.Post("/batch", operators, movementHandler.Batch)

	// Transferencias
	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers)
	transfers.Get("/", anyRole, transferHandler.List)
	transfers.Get("/:id", anyRole, transferHandler.GetByID)
	transfers.Post("/", operators, transferHandler.Create)
	transfers.Post("/:id/receipts", operators, transferHandler.Receive)
	transfers.Delete("/:id", admins, transferHandler.Delete)

	// Compras
	purchases := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.Purchases)
	purchases.Get("/", anyRole, purchaseHandler.List)
	purchases.Get("/:id", anyRole, purchaseHandler.GetByID)
	purchases.Post("/", operators, purchaseHandler.Create)
	purchases.Post("/:id/guides", operators, purchaseHandler.AddGuide)
	purchases.Put("/:id/state", operators, purchaseHandler.SetState)
	purchases.Put("/:id/claim", operators, purchaseHandler.FileClaim)
	purchases.Post("/:id/receipts", operators, purchaseHandler.Receive)

	// Marketplace (espejo de sólo lectura)
	if deps.Marketplace != nil {
		mp := api.Group("/marketplace")
		marketplaceHandler := NewMarketplaceHandler(deps.Marketplace, deps.SyncEnqueuer)
		mp.Get("/listings", anyRole, marketplaceHandler.Listings)
		mp.Post("/sync", admins, marketplaceHandler.Sync)
	}
}
