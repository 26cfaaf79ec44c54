package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, reintentando ante conflictos
// de serialización o deadlock.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	log        *logger.Logger
}

// NewTxRunner construye el runner con el pool. maxRetries es el número de reintentos tras el primer intento.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int, log *logger.Logger) *TxRunner {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &TxRunner{pool: pool, maxRetries: maxRetries, log: logger.OrNop(log)}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Agotados los reintentos devuelve domain.ErrTransient envolviendo la causa.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	p := retryPolicy{
		maxRetries: r.maxRetries,
		backoff:    quadraticBackoff,
		onRetry: func(attempt int, err error) {
			r.log.Warn().Err(err).Int("attempt", attempt).Msg("reintentando transacción por conflicto de concurrencia")
		},
	}
	return p.do(ctx, func() error { return r.runOnce(ctx, fn) })
}

// retryPolicy reintenta sólo errores de serialización o deadlock.
type retryPolicy struct {
	maxRetries int
	backoff    func(attempt int) time.Duration
	onRetry    func(attempt int, err error)
}

func quadraticBackoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * 10 * time.Millisecond
}

func (p retryPolicy) do(ctx context.Context, attempt func() error) error {
	var lastErr error
	for n := 0; n <= p.maxRetries; n++ {
		if n > 0 {
			if p.onRetry != nil {
				p.onRetry(n, lastErr)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff(n)):
			}
		}
		lastErr = attempt()
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrTransient, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := inventory.TxRepos{
		Warehouses: NewWarehouseRepository(tx),
		Movements:  NewMovementRepository(tx),
		Stocks:     NewStockRepository(tx),
		Products:   NewProductRepository(tx),
		Transfers:  NewTransferRepository(tx),
		Purchases:  NewPurchaseRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
