package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-account-ledger/pkg/wal"
)

// walRecord 是寫入 WAL 的一筆帳戶快照
type walRecord struct {
	RecordID      uuid.UUID `json:"record_id"`
	AccountID     string    `json:"account_id"`
	ClientName    string    `json:"client_name"`
	ClientTaxID   string    `json:"client_tax_id"`
	Balance       float64   `json:"balance"`
	LoanAvailable float64   `json:"loan_available"`
	WrittenAt     int64     `json:"written_at"`
}

func newWALRecord(account *domain.Account) walRecord {
	return walRecord{
		RecordID:      uuid.New(),
		AccountID:     account.ID,
		ClientName:    account.Client.Name,
		ClientTaxID:   account.Client.TaxID,
		Balance:       account.Balance,
		LoanAvailable: account.LoanAvailable,
		WrittenAt:     time.Now().UnixNano(),
	}
}

func (r walRecord) toAccount() *domain.Account {
	return &domain.Account{
		ID:            r.AccountID,
		Client:        domain.Client{Name: r.ClientName, TaxID: r.ClientTaxID},
		Balance:       r.Balance,
		LoanAvailable: r.LoanAvailable,
	}
}

// MutexStore 是一個使用 Mutex 保護的記憶體帳戶儲存
//
// 結構:
//
//	accounts: 帳戶資料 Map，存放的是呼叫端傳入的同一個指標
//	mu: 保護 accounts
//	wal: Write-Ahead Log 實例，可為 nil (純記憶體)
type MutexStore struct {
	accounts map[string]*domain.Account
	mu       sync.RWMutex
	wal      *wal.WAL
}

// NewMutexStore 建立一個新的 MutexStore 實例
//
// 參數:
//
//	accounts: 初始帳戶資料 (例如從 MySQL 載入)，可為 nil
//	w: Write-Ahead Log 實例，可為 nil
//
// 回傳:
//
//	*MutexStore: MutexStore 實例
func NewMutexStore(accounts map[string]*domain.Account, w *wal.WAL) *MutexStore {
	if accounts == nil {
		accounts = make(map[string]*domain.Account)
	}
	return &MutexStore{
		accounts: accounts,
		wal:      w,
	}
}

// NewMutexStoreWithRecovery 建立 MutexStore 並從 WAL 恢復帳戶狀態
// WAL 中較新的快照會覆蓋初始帳戶資料
func NewMutexStoreWithRecovery(accounts map[string]*domain.Account, w *wal.WAL) (*MutexStore, error) {
	store := NewMutexStore(accounts, w)
	if err := store.recoverFromWAL(); err != nil {
		return nil, err
	}
	return store, nil
}

// recoverFromWAL 依序重放 WAL 快照，同一帳戶以最後一筆為準
// 只有建構時呼叫，無需 Lock (單執行緒)
func (m *MutexStore) recoverFromWAL() error {
	if m.wal == nil {
		return nil
	}
	return m.wal.ReadAll(func(jsonRaw []byte) error {
		var rec walRecord
		if err := json.Unmarshal(jsonRaw, &rec); err != nil {
			return fmt.Errorf("decode wal record: %w", err)
		}
		m.accounts[rec.AccountID] = rec.toAccount()
		return nil
	})
}

// Save 先寫 WAL 再更新記憶體
func (m *MutexStore) Save(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.wal != nil {
		if err := m.wal.Write(newWALRecord(account)); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrWALWriteFailed, err)
		}
	}
	m.accounts[account.ID] = account
	return nil
}

// FindByID 取得帳戶，回傳的是儲存中的同一個實例
func (m *MutexStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// Len 目前的帳戶數量
func (m *MutexStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

var _ usecase.AccountStore = (*MutexStore)(nil)
