package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola por defecto de tareas.
	QueueDefault = "default"
	// TaskMarketplaceSync espejo periódico de publicaciones del marketplace.
	TaskMarketplaceSync = "marketplace:sync"
)

// MarketplaceSyncPayload metadatos de la corrida.
type MarketplaceSyncPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
	Manual       bool      `json:"manual,omitempty"`
}

// NewMarketplaceSyncTask construye la tarea asynq.
func NewMarketplaceSyncTask(at time.Time, manual bool) (*asynq.Task, error) {
	body, err := json.Marshal(MarketplaceSyncPayload{ScheduledFor: at, Manual: manual})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMarketplaceSync, body, asynq.Queue(QueueDefault), asynq.MaxRetry(2)), nil
}

// Client encola tareas.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueMarketplaceSync pide una sincronización inmediata.
func (c *Client) EnqueueMarketplaceSync(ctx context.Context) (*asynq.TaskInfo, error) {
	task, err := NewMarketplaceSyncTask(time.Now().UTC(), true)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Unique(5*time.Minute))
}

// Close libera recursos del cliente.
func (c *Client) Close() error {
	return c.client.Close()
}
