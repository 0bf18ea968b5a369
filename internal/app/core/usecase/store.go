package usecase

import (
	"context"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
)

// AccountStore 是帳戶儲存的介面
type AccountStore interface {
	// Save 依 ID 新增或覆寫帳戶
	Save(ctx context.Context, account *domain.Account) error
	// FindByID 取得帳戶，不存在時回傳 domain.ErrAccountNotFound
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}
