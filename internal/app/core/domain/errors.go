package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount 存款/提款金額必須大於 0
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientBalance 餘額不足
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNegativeValue 貸款額度不可為負數
	ErrNegativeValue = errors.New("negative value")

	// ErrInvalidBalance 可貸款餘額不足
	ErrInvalidBalance = errors.New("invalid balance")

	// ErrWALWriteFailed 寫入 WAL 失敗
	ErrWALWriteFailed = errors.New("wal write failed")
)

// AccountNotFoundError 帶有帳戶 ID 的 ErrAccountNotFound
//
// Role 描述帳戶在操作中的角色 (如轉帳的 "source" / "destination")，可為空
type AccountNotFoundError struct {
	ID   string
	Role string
}

func NewAccountNotFoundError(id, role string) *AccountNotFoundError {
	return &AccountNotFoundError{ID: id, Role: role}
}

func (e *AccountNotFoundError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("account not found [id: %s]", e.ID)
	}
	return fmt.Sprintf("%s account not found [id: %s]", e.Role, e.ID)
}

// Is 讓 errors.Is(err, ErrAccountNotFound) 成立
func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}
