package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/pkg/wal"
)

func openWAL(t *testing.T, path string) *wal.WAL {
	t.Helper()
	w, err := wal.NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestSaveAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMutexStore(nil, nil)

	acc := domain.NewAccount("1", domain.Client{Name: "Ana", TaxID: "111"})
	if err := s.Save(ctx, acc); err != nil {
		t.Fatal(err)
	}
	got, err := s.FindByID(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if got != acc {
		t.Fatalf("FindByID should return the stored instance")
	}
	if _, err := s.FindByID(ctx, "2"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d want 1", s.Len())
	}
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMutexStore(map[string]*domain.Account{
		"1": {ID: "1", Balance: 50},
	}, nil)

	if err := s.Save(ctx, domain.NewAccount("1", domain.Client{Name: "New"})); err != nil {
		t.Fatal(err)
	}
	got, _ := s.FindByID(ctx, "1")
	if got.Balance != 0 || got.Client.Name != "New" {
		t.Fatalf("got %+v", got)
	}
}

// TestRecoverFromWAL 重開後以 WAL 中最後一筆快照為準
func TestRecoverFromWAL(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wal.log")

	s, err := NewMutexStoreWithRecovery(nil, openWAL(t, path))
	if err != nil {
		t.Fatal(err)
	}
	acc := domain.NewAccount("1", domain.Client{Name: "Ana", TaxID: "111"})
	if err := s.Save(ctx, acc); err != nil {
		t.Fatal(err)
	}
	acc.Balance = 80
	acc.LoanAvailable = 5
	if err := s.Save(ctx, acc); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, domain.NewAccount("2", domain.Client{Name: "Carla"})); err != nil {
		t.Fatal(err)
	}

	seed := map[string]*domain.Account{
		"1": {ID: "1", Balance: 1},
		"3": {ID: "3", Balance: 3},
	}
	recovered, err := NewMutexStoreWithRecovery(seed, openWAL(t, path))
	if err != nil {
		t.Fatal(err)
	}
	if recovered.Len() != 3 {
		t.Fatalf("len=%d want 3", recovered.Len())
	}
	got, err := recovered.FindByID(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Account{ID: "1", Client: domain.Client{Name: "Ana", TaxID: "111"}, Balance: 80, LoanAvailable: 5}
	if *got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestSaveFailsWhenWALClosed(t *testing.T) {
	w, err := wal.NewWAL(filepath.Join(t.TempDir(), "wal.log"))
	if err != nil {
		t.Fatal(err)
	}
	s := NewMutexStore(nil, w)
	_ = w.Close()

	err = s.Save(context.Background(), domain.NewAccount("1", domain.Client{}))
	if !errors.Is(err, domain.ErrWALWriteFailed) {
		t.Fatalf("want ErrWALWriteFailed, got %v", err)
	}
	// 底層的檔案錯誤也要留在錯誤鏈上
	if !errors.Is(err, os.ErrClosed) {
		t.Fatalf("want os.ErrClosed in chain, got %v", err)
	}
	var pathErr *os.PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("want *os.PathError in chain, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("failed save must not update memory")
	}
}
