package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
)

// 轉帳時帳戶的角色，用於錯誤訊息
const (
	RoleSource      = "source"
	RoleDestination = "destination"
)

// AccountUseCase 是帳戶的核心業務邏輯層
//
// 結構:
//
//	store: 帳戶儲存 (由外部注入，不持有其生命週期)
//	locks: 以帳戶 ID 為單位的鎖，涵蓋 讀取 -> 修改 -> 寫回 整段流程
//	logger: 結構化日誌
type AccountUseCase struct {
	store  AccountStore
	locks  *keyLocker
	logger *slog.Logger
}

// Option 定義 AccountUseCase 的配置選項函數
type Option func(*AccountUseCase)

// WithLogger 設定日誌輸出
func WithLogger(logger *slog.Logger) Option {
	return func(u *AccountUseCase) {
		if logger != nil {
			u.logger = logger
		}
	}
}

func NewAccountUseCase(store AccountStore, opts ...Option) *AccountUseCase {
	u := &AccountUseCase{
		store:  store,
		locks:  newKeyLocker(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateAccount 儲存新帳戶
// 不檢查 ID 是否重複，相同 ID 會直接覆寫 (last write wins)
func (u *AccountUseCase) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account == nil {
		return errors.New("account is nil")
	}
	unlock := u.locks.Lock(account.ID)
	defer unlock()

	if err := u.store.Save(ctx, account); err != nil {
		return fmt.Errorf("save account %s: %w", account.ID, err)
	}
	u.logger.DebugContext(ctx, "account.created", "account_id", account.ID)
	return nil
}

// FindAccount 取得帳戶的快照 (值拷貝)
//
// 回傳:
//
//	*domain.Account: 帳戶快照，修改它不會影響帳本
//	error: 帳戶不存在時為 *domain.AccountNotFoundError
func (u *AccountUseCase) FindAccount(ctx context.Context, id string) (*domain.Account, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	account, err := u.load(ctx, id, "")
	if err != nil {
		return nil, err
	}
	snapshot := *account
	return &snapshot, nil
}

// Deposit 存款
func (u *AccountUseCase) Deposit(ctx context.Context, id string, amount float64) error {
	unlock := u.locks.Lock(id)
	defer unlock()

	account, err := u.load(ctx, id, "")
	if err != nil {
		return err
	}
	before := *account
	if err := account.Deposit(amount); err != nil {
		return err
	}
	if err := u.commit(ctx, account, before); err != nil {
		return err
	}
	u.logger.DebugContext(ctx, "account.deposit", "account_id", id, "amount", amount, "balance", account.Balance)
	return nil
}

// Transfer 轉帳 (提款 + 存款)
//
// 兩個帳戶都找到後才會開始修改，任一帳戶不存在時兩邊都不會被動到。
// 任一步驟失敗會把兩個帳戶還原到轉帳前的狀態。
func (u *AccountUseCase) Transfer(ctx context.Context, sourceID, destinationID string, amount float64) error {
	_, _, err := u.TransferWithResult(ctx, sourceID, destinationID, amount)
	return err
}

// TransferWithResult 同 Transfer，並回傳兩個帳戶轉帳後的快照
//
// 快照在釋放帳戶鎖之前取得，不會混入其他並發操作的結果。
// 自己轉給自己時兩個快照相同。
func (u *AccountUseCase) TransferWithResult(ctx context.Context, sourceID, destinationID string, amount float64) (source, destination domain.Account, err error) {
	unlock := u.locks.Lock(sourceID, destinationID)
	defer unlock()

	src, dst, err := u.transfer(ctx, sourceID, destinationID, amount)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}
	return *src, *dst, nil
}

// transfer 需在持有兩個帳戶的鎖時呼叫，成功時回傳已寫回的兩個帳戶
func (u *AccountUseCase) transfer(ctx context.Context, sourceID, destinationID string, amount float64) (*domain.Account, *domain.Account, error) {
	source, err := u.load(ctx, sourceID, RoleSource)
	if err != nil {
		return nil, nil, err
	}
	destination := source
	if destinationID != sourceID {
		destination, err = u.load(ctx, destinationID, RoleDestination)
		if err != nil {
			return nil, nil, err
		}
	}

	sourceBefore, destinationBefore := *source, *destination
	restore := func() {
		*source = sourceBefore
		*destination = destinationBefore
	}

	if err := source.Withdraw(amount); err != nil {
		return nil, nil, err
	}
	if err := destination.Deposit(amount); err != nil {
		restore()
		return nil, nil, err
	}

	if err := u.store.Save(ctx, source); err != nil {
		restore()
		return nil, nil, fmt.Errorf("save account %s: %w", sourceID, err)
	}
	if err := u.store.Save(ctx, destination); err != nil {
		restore()
		saveErr := fmt.Errorf("save account %s: %w", destinationID, err)
		// 來源帳戶已寫入扣款，需補償寫回原狀態
		if rerr := u.store.Save(ctx, source); rerr != nil {
			u.logger.ErrorContext(ctx, "transfer.compensation_failed",
				"source_id", sourceID, "destination_id", destinationID, "amount", amount, "err", rerr)
			return nil, nil, errors.Join(saveErr, fmt.Errorf("restore account %s: %w", sourceID, rerr))
		}
		return nil, nil, saveErr
	}

	u.logger.DebugContext(ctx, "account.transfer",
		"source_id", sourceID, "destination_id", destinationID, "amount", amount)
	return source, destination, nil
}

// AddLoanCredit 增加可貸款額度，0 元視為合法
func (u *AccountUseCase) AddLoanCredit(ctx context.Context, id string, amount float64) error {
	unlock := u.locks.Lock(id)
	defer unlock()

	account, err := u.load(ctx, id, "")
	if err != nil {
		return err
	}
	if !(amount >= 0) {
		return domain.ErrNegativeValue
	}
	before := *account
	if err := account.AddLoanCredit(amount); err != nil {
		return err
	}
	if err := u.commit(ctx, account, before); err != nil {
		return err
	}
	u.logger.DebugContext(ctx, "account.loan_credit", "account_id", id, "amount", amount, "loan_available", account.LoanAvailable)
	return nil
}

// TakeLoan 借款：從可貸款額度扣除並存入餘額
func (u *AccountUseCase) TakeLoan(ctx context.Context, id string, amount float64) error {
	unlock := u.locks.Lock(id)
	defer unlock()

	account, err := u.load(ctx, id, "")
	if err != nil {
		return err
	}
	// 以正向比較撰寫，NaN 會落入錯誤分支
	if !(amount <= account.LoanAvailable) {
		return domain.ErrInvalidBalance
	}
	// DrawLoan 接受 0，但後續的 Deposit 不接受，先擋下避免只做一半
	if !(amount > 0) {
		return domain.ErrInvalidAmount
	}

	before := *account
	if err := account.DrawLoan(amount); err != nil {
		return err
	}
	if err := account.Deposit(amount); err != nil {
		*account = before
		return err
	}
	if err := u.commit(ctx, account, before); err != nil {
		return err
	}
	u.logger.DebugContext(ctx, "account.loan_taken", "account_id", id, "amount", amount, "loan_available", account.LoanAvailable)
	return nil
}

// load 從 store 讀取帳戶，找不到時回傳帶 ID 的錯誤
func (u *AccountUseCase) load(ctx context.Context, id, role string) (*domain.Account, error) {
	account, err := u.store.FindByID(ctx, id)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.NewAccountNotFoundError(id, role)
	}
	if err != nil {
		return nil, fmt.Errorf("find account %s: %w", id, err)
	}
	return account, nil
}

// commit 寫回帳戶，失敗時還原記憶體中的狀態
func (u *AccountUseCase) commit(ctx context.Context, account *domain.Account, before domain.Account) error {
	if err := u.store.Save(ctx, account); err != nil {
		*account = before
		return fmt.Errorf("save account %s: %w", account.ID, err)
	}
	return nil
}
