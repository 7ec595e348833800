package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-uid/internal/checkpoint"
	"katydid-common-uid/internal/config"
	"katydid-common-uid/pkg/idgen/snowflake"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(dsn string) *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{Addr: "127.0.0.1:0", MaxBatch: 10, ShutdownTimeout: time.Second},
		Generators: []config.GeneratorConfig{
			{Name: "orders", WorkerID: 1, DatacenterID: 1},
			{Name: "users", WorkerID: 2, DatacenterID: 1, Type: "snowflake"},
		},
	}
	if dsn != "" {
		cfg.Checkpoint = checkpoint.Config{Driver: checkpoint.DriverSQLite, DSN: dsn, Interval: time.Hour}
	}
	return cfg
}

func get(t *testing.T, a *App, target string) int {
	t.Helper()
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec.Code
}

func TestNew_WithoutCheckpoint(t *testing.T) {
	a, err := New(context.Background(), testConfig(""), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"orders", "users"}, a.Registry().ListKeys())
	assert.Equal(t, http.StatusOK, get(t, a, "/v1/ids/next?generator=users&count=10"))
	assert.Equal(t, http.StatusBadRequest, get(t, a, "/v1/ids/next?generator=users&count=11"))
}

func TestNew_DuplicateIdentity(t *testing.T) {
	cfg := testConfig("")
	cfg.Generators[1].WorkerID = 1

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

// TestNew_ResumesFromCheckpoint 重启后时钟早于上次保存的高水位时拒绝生成
func TestNew_ResumesFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "checkpoint.db")
	saved := snowflake.Epoch + 10_000

	store, err := checkpoint.OpenSQL(ctx, checkpoint.DriverSQLite, dsn, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "orders", saved))
	require.NoError(t, store.Close())

	clock := &atomic.Int64{}
	clock.Store(saved - 1_000)

	a, err := New(ctx, testConfig(dsn), nil, WithClock(clock.Load))
	require.NoError(t, err)
	t.Cleanup(a.close)

	orders, err := a.Registry().Get("orders")
	require.NoError(t, err)
	assert.Equal(t, saved, orders.LastTimestamp())

	assert.Equal(t, http.StatusServiceUnavailable, get(t, a, "/v1/ids/next?generator=orders"))
	// 没有保存过高水位的生成器不受影响
	assert.Equal(t, http.StatusOK, get(t, a, "/v1/ids/next?generator=users"))

	clock.Store(saved + 1)
	id, err := orders.NextID()
	require.NoError(t, err)
	assert.Equal(t, saved+1, snowflake.ParseID(id).Timestamp)
}

// TestRun_FlushesOnShutdown 关闭时写入最终高水位
func TestRun_FlushesOnShutdown(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "checkpoint.db")
	clock := &atomic.Int64{}
	clock.Store(snowflake.Epoch + 20_000)

	a, err := New(context.Background(), testConfig(dsn), nil, WithClock(clock.Load))
	require.NoError(t, err)

	users, err := a.Registry().Get("users")
	require.NoError(t, err)
	_, err = users.NextID()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	store, err := checkpoint.OpenSQL(context.Background(), checkpoint.DriverSQLite, dsn, nil)
	require.NoError(t, err)
	defer store.Close()

	ms, err := store.Load(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, snowflake.Epoch+20_000, ms)

	ms, err = store.Load(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ms)
}

func TestRun_ListenError(t *testing.T) {
	cfg := testConfig("")
	cfg.Server.Addr = "256.0.0.1:bad"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Error(t, a.Run(context.Background()))
}
