package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/marketplace"
)

// SyncEnqueuer encola una sincronización inmediata en el worker.
type SyncEnqueuer interface {
	EnqueueMarketplaceSync(ctx context.Context) (*asynq.TaskInfo, error)
}

// MarketplaceHandler consulta del espejo de publicaciones (protegido).
type MarketplaceHandler struct {
	sync     *marketplace.SyncUseCase
	enqueuer SyncEnqueuer
}

// NewMarketplaceHandler construye el handler. enqueuer puede ser nil.
func NewMarketplaceHandler(sync *marketplace.SyncUseCase, enqueuer SyncEnqueuer) *MarketplaceHandler {
	return &MarketplaceHandler{sync: sync, enqueuer: enqueuer}
}

// Listings godoc
// @Summary      Publicaciones espejadas del marketplace
// @Tags         marketplace
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ListingResponse
// @Router       /api/marketplace/listings [get]
func (h *MarketplaceHandler) Listings(c *fiber.Ctx) error {
	page, e := pageParams(c)
	if e != nil {
		return badRequest(c, e)
	}
	list, err := h.sync.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ListingResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toListingResponse(l))
	}
	return c.JSON(out)
}

// Sync godoc
// @Summary      Encolar sincronización inmediata
// @Tags         marketplace
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/marketplace/sync [post]
func (h *MarketplaceHandler) Sync(c *fiber.Ctx) error {
	if h.enqueuer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SYNC_DISABLED", Message: "worker no configurado"})
	}
	info, err := h.enqueuer.EnqueueMarketplaceSync(c.UserContext())
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SYNC_PENDING", Message: "ya hay una sincronización encolada"})
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SYNC_UNAVAILABLE", Message: err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": info.ID, "queue": info.Queue})
}
