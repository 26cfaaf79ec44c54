package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/bodegas-api/internal/application/marketplace"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

// Syncer lo que el job necesita del caso de uso de sincronización.
type Syncer interface {
	Sync(ctx context.Context) (marketplace.SyncResult, error)
}

// MarketplaceSyncHandler procesa TaskMarketplaceSync con candado y métricas.
type MarketplaceSyncHandler struct {
	syncer  Syncer
	guard   *Guard
	metrics *Metrics
	log     *logger.Logger
}

// NewMarketplaceSyncHandler construye el handler.
func NewMarketplaceSyncHandler(syncer Syncer, guard *Guard, metrics *Metrics, log *logger.Logger) *MarketplaceSyncHandler {
	return &MarketplaceSyncHandler{syncer: syncer, guard: guard, metrics: metrics, log: logger.OrNop(log)}
}

// ProcessTask implementa asynq.Handler.
func (h *MarketplaceSyncHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload MarketplaceSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := h.metrics.Track(TaskMarketplaceSync)
	var res marketplace.SyncResult
	ran, err := h.guard.Do(ctx, TaskMarketplaceSync, func(ctx context.Context) error {
		var err error
		res, err = h.syncer.Sync(ctx)
		return err
	})
	if !ran && err == nil {
		h.metrics.Skip(TaskMarketplaceSync)
		h.log.Info().Msg("sincronización en curso en otro proceso, se omite")
		return nil
	}
	if err != nil {
		h.log.Error().Err(err).Bool("manual", payload.Manual).Msg("sincronización de marketplace fallida")
		return tracker.End(err)
	}
	h.log.Info().Int("upserted", res.Upserted).Bool("manual", payload.Manual).Msg("sincronización de marketplace completada")
	return tracker.End(nil)
}
