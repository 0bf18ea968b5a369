package domain

import "math"

// Client 帳戶持有人，建立後不可變更
type Client struct {
	Name  string
	TaxID string
}

// Account 帳戶
//
// 結構:
//
//	ID: 帳戶 ID，建立後不可變更
//	Client: 帳戶持有人
//	Balance: 可用餘額 (>= 0)
//	LoanAvailable: 可貸款額度 (>= 0)，不可直接消費，需先借出至 Balance
type Account struct {
	ID            string
	Client        Client
	Balance       float64
	LoanAvailable float64
}

// NewAccount 建立一個餘額與貸款額度皆為 0 的帳戶
func NewAccount(id string, client Client) *Account {
	return &Account{
		ID:     id,
		Client: client,
	}
}

// Deposit 存款
func (a *Account) Deposit(amount float64) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}

	a.Balance += amount
	return nil
}

// Withdraw 提款
func (a *Account) Withdraw(amount float64) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}

	if !(amount <= a.Balance) {
		return ErrInsufficientBalance
	}

	a.Balance -= amount
	return nil
}

// AddLoanCredit 增加可貸款額度
// 注意: 與存提款不同，0 是合法的金額
func (a *Account) AddLoanCredit(amount float64) error {
	if !(amount >= 0) {
		return ErrNegativeValue
	}
	if math.IsInf(amount, 1) {
		return ErrInvalidAmount
	}

	a.LoanAvailable += amount
	return nil
}

// DrawLoan 從可貸款額度扣除借款金額
// 只扣額度，借出的金額由呼叫端存入 Balance
func (a *Account) DrawLoan(amount float64) error {
	if !(amount >= 0) {
		return ErrNegativeValue
	}

	if !(amount <= a.LoanAvailable) {
		return ErrInvalidBalance
	}

	a.LoanAvailable -= amount
	return nil
}

// validAmount 存提款金額必須是大於 0 的有限數 (NaN 與 ±Inf 皆不合法)
func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 1)
}
