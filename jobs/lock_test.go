package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/jhoicas/bodegas-api/internal/application/marketplace"
	"github.com/jhoicas/bodegas-api/jobs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestGuard_SkipsWhileHeld(t *testing.T) {
	ctx := context.Background()
	guard := jobs.NewGuard(newRedis(t), time.Minute)

	var inner bool
	ran, err := guard.Do(ctx, "sync", func(ctx context.Context) error {
		r, err := guard.Do(ctx, "sync", func(context.Context) error {
			inner = true
			return nil
		})
		assert.False(t, r)
		return err
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, inner)

	ran, err = guard.Do(ctx, "sync", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.True(t, ran, "el candado se libera al terminar")
}

func TestGuard_PropagatesError(t *testing.T) {
	guard := jobs.NewGuard(newRedis(t), time.Minute)
	boom := errors.New("boom")
	ran, err := guard.Do(context.Background(), "sync", func(context.Context) error { return boom })
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
}

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) Sync(context.Context) (marketplace.SyncResult, error) {
	f.calls++
	return marketplace.SyncResult{Fetched: 2, Upserted: 2}, f.err
}

func TestMarketplaceSyncHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobs.NewMetrics(reg)
	syncer := &fakeSyncer{}
	h := jobs.NewMarketplaceSyncHandler(syncer, jobs.NewGuard(newRedis(t), time.Minute), metrics, nil)

	task, err := jobs.NewMarketplaceSyncTask(time.Now(), false)
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, 1, syncer.calls)

	syncer.err = errors.New("api caída")
	assert.Error(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, 2, syncer.calls)

	n, err := testutil.GatherAndCount(reg, "bodegas_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FailuresFor(jobs.TaskMarketplaceSync)))
}

func TestMarketplaceSyncHandler_BadPayload(t *testing.T) {
	h := jobs.NewMarketplaceSyncHandler(&fakeSyncer{}, jobs.NewGuard(newRedis(t), time.Minute), jobs.NewMetrics(prometheus.NewRegistry()), nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask(jobs.TaskMarketplaceSync, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
