package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"katydid-common-uid/internal/checkpoint"
	"katydid-common-uid/internal/config"
	"katydid-common-uid/internal/server"
	"katydid-common-uid/pkg/idgen/core"
	"katydid-common-uid/pkg/idgen/registry"
	"katydid-common-uid/pkg/idgen/snowflake"
)

// App 应用：持有生成器注册表、高水位存储与HTTP服务
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *registry.Registry
	store    checkpoint.Store
	keeper   *checkpoint.Keeper
	server   *http.Server
	clock    snowflake.Clock
}

// Option 应用可选项
type Option func(*App)

// WithClock 为所有生成器指定时钟来源
func WithClock(clock snowflake.Clock) Option {
	return func(a *App) {
		a.clock = clock
	}
}

// New 按配置组装应用
// 说明：配置了存储时，每个生成器以上次保存的高水位启动
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := checkpoint.Open(ctx, cfg.Checkpoint, logger.Named("checkpoint"))
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry.NewRegistry(registry.WithLogger(logger.Named("registry"))),
		store:    store,
	}
	for _, opt := range opts {
		opt(a)
	}
	if store != nil {
		a.keeper = checkpoint.NewKeeper(store, cfg.Checkpoint.Interval, logger.Named("checkpoint"))
	}

	if err := a.createGenerators(ctx); err != nil {
		a.close()
		return nil, err
	}

	srv := server.New(a.registry,
		server.WithLogger(logger.Named("http")),
		server.WithJWTSecret(cfg.Server.JWTSecret),
		server.WithMaxBatch(cfg.Server.MaxBatch),
	)
	a.server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
	}
	return a, nil
}

func (a *App) createGenerators(ctx context.Context) error {
	for _, g := range a.cfg.Generators {
		opts := []snowflake.Option{
			snowflake.WithLogger(a.logger.Named("snowflake").With(zap.String("generator", g.Name))),
		}
		if a.clock != nil {
			opts = append(opts, snowflake.WithClock(a.clock))
		}

		if a.keeper != nil {
			last, err := a.keeper.Seed(ctx, g.Name)
			if err != nil {
				return fmt.Errorf("load checkpoint for %s: %w", g.Name, err)
			}
			if last > 0 {
				opts = append(opts, snowflake.WithLastTimestamp(last))
				a.logger.Info("generator resumed from checkpoint",
					zap.String("generator", g.Name),
					zap.Int64("last_timestamp", last),
				)
			}
		}

		genType := core.GeneratorType(g.Type)
		if g.Type == "" {
			genType = core.GeneratorTypeSnowflake
		}
		gen, err := a.registry.Create(g.Name, genType, &snowflake.Config{
			WorkerID:      g.WorkerID,
			DatacenterID:  g.DatacenterID,
			EnableMetrics: g.EnableMetrics,
		}, opts...)
		if err != nil {
			return fmt.Errorf("create generator %s: %w", g.Name, err)
		}

		if a.keeper != nil {
			a.keeper.Track(g.Name, gen)
		}
	}
	return nil
}

// Handler HTTP处理器
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Registry 生成器注册表
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run 启动服务直到ctx取消，然后优雅关闭并保存高水位
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}

	keeperCtx, stopKeeper := context.WithCancel(context.Background())
	keeperDone := make(chan error, 1)
	if a.keeper != nil {
		go func() { keeperDone <- a.keeper.Run(keeperCtx) }()
	} else {
		keeperDone <- nil
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = err
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", zap.Error(err))
		runErr = errors.Join(runErr, err)
	}

	stopKeeper()
	if err := <-keeperDone; err != nil {
		runErr = errors.Join(runErr, err)
	}

	a.logger.Info("stopped")
	return runErr
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}

func (a *App) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("close checkpoint store failed", zap.Error(err))
	}
}
