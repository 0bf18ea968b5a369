package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	grpc_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	grpcpool "github.com/JoeShih716/go-account-ledger/pkg/grpc"
)

// 壓測用 client: 建立兩個帳戶後並發轉帳，最後檢查總額是否守恆
func main() {
	target := flag.String("target", "localhost:50051", "ledger gRPC address")
	total := flag.Int("n", 100000, "number of transfers")
	concurrency := flag.Int("c", 100, "concurrent requests")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	pool := grpcpool.NewPool(grpcpool.WithInterceptor(grpcpool.RequestIDInterceptor(grpc_adapter.RequestIDKey)))
	defer pool.Close()
	conn, err := pool.GetConnection(*target)
	if err != nil {
		logger.Error("connect failed", "err", err)
		os.Exit(1)
	}
	c := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	// 帳戶 ID 由伺服器產生
	a, err := c.CreateAccount(ctx, "", domain.Client{Name: "load-a"})
	if err != nil {
		logger.Error("create account failed", "err", err)
		os.Exit(1)
	}
	b, err := c.CreateAccount(ctx, "", domain.Client{Name: "load-b"})
	if err != nil {
		logger.Error("create account failed", "err", err)
		os.Exit(1)
	}
	if _, err := c.Deposit(ctx, a.ID, float64(*total)); err != nil {
		logger.Error("deposit failed", "err", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	var failed, insufficient atomic.Int64
	sem := make(chan struct{}, *concurrency)
	start := time.Now()

	for i := 0; i < *total; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			src, dst := a.ID, b.ID
			if idx%2 == 1 {
				src, dst = dst, src
			}
			if _, _, err := c.Transfer(ctx, src, dst, 1); err != nil {
				if errors.Is(err, domain.ErrInsufficientBalance) {
					insufficient.Add(1)
					return
				}
				if failed.Add(1)%1000 == 1 {
					logger.Warn("transfer failed", "idx", idx, "err", err)
				}
			}
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Printf("Completed %d requests in %v\n", *total, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*total)/elapsed.Seconds())
	fmt.Printf("Failed: %d, insufficient balance: %d\n", failed.Load(), insufficient.Load())

	finalA, errA := c.GetAccount(ctx, a.ID)
	finalB, errB := c.GetAccount(ctx, b.ID)
	if err := errors.Join(errA, errB); err != nil {
		logger.Error("read balances failed", "err", err)
		os.Exit(1)
	}
	sum := finalA.Balance + finalB.Balance
	fmt.Printf("Balances: %s=%.2f %s=%.2f total=%.2f\n", a.ID, finalA.Balance, b.ID, finalB.Balance, sum)
	if sum != float64(*total) {
		logger.Error("total not conserved", "want", *total, "got", sum)
		os.Exit(1)
	}
}
