package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/in/grpc"
	memory_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/config"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-account-ledger/pkg/mysql"
	"github.com/JoeShih716/go-account-ledger/pkg/wal"
)

func main() {
	// 1. 載入設定
	cfg, err := config.Load(config.Path())
	if err != nil {
		slog.Error("config.load_failed", "err", err)
		os.Exit(1)
	}
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 初始化帳戶儲存
	store, cleanup, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store.init_failed", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer cleanup()

	// 3. 初始化 UseCase
	core := usecase.NewAccountUseCase(store, usecase.WithLogger(logger))

	// 4. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logger.Error("grpc.listen_failed", "addr", cfg.GRPC.Addr, "err", err)
		os.Exit(1)
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.LoggingInterceptor(logger)))
	grpc_adapter.RegisterAccountServiceServer(s, grpc_adapter.NewGrpcServer(core))
	if cfg.GRPC.Reflection {
		reflection.Register(s)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("grpc.serving", "addr", cfg.GRPC.Addr, "storage", cfg.Storage.Driver)
		serveErr <- s.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("server.shutting_down")
		s.GracefulStop()
	case err := <-serveErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc.serve_failed", "err", err)
		}
	}
	logger.Info("server.exited")
}

// newStore 依設定建立帳戶儲存，回傳的 cleanup 負責關閉 WAL 與資料庫連線
func newStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (usecase.AccountStore, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("store.close_failed", "err", err)
			}
		}
	}

	var mysqlStore *mysql_adapter.Store
	if cfg.Storage.Driver == config.DriverMySQL || cfg.Storage.SeedFromMySQL {
		client, err := mysql.NewClient(ctx, cfg.MySQL)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, client.Close)
		logger.Info("mysql.connected", "host", cfg.MySQL.Host, "db", cfg.MySQL.DBName)

		mysqlStore = mysql_adapter.NewStore(client)
		if err := mysqlStore.Migrate(ctx); err != nil {
			return nil, cleanup, err
		}
	}

	if cfg.Storage.Driver == config.DriverMySQL {
		return mysqlStore, cleanup, nil
	}

	var accounts map[string]*domain.Account
	if mysqlStore != nil {
		loaded, err := mysqlStore.LoadAllAccounts(ctx)
		if err != nil {
			return nil, cleanup, err
		}
		accounts = loaded
		logger.Info("accounts.loaded", "count", len(accounts))
	}

	var walFile *wal.WAL
	if cfg.Storage.WALPath != "" {
		w, err := wal.NewWAL(cfg.Storage.WALPath)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, w.Close)
		walFile = w
	}

	store, err := memory_adapter.NewMutexStoreWithRecovery(accounts, walFile)
	if err != nil {
		return nil, cleanup, err
	}
	logger.Info("memory_store.ready", "accounts", store.Len(), "wal", cfg.Storage.WALPath)
	return store, cleanup, nil
}
