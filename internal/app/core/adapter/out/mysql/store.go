package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-account-ledger/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID            string `gorm:"primaryKey;size:64"`
	ClientName    string `gorm:"size:255"`
	ClientTaxID   string `gorm:"column:client_tax_id;size:64"`
	Balance       float64
	LoanAvailable float64
	UpdatedAt     int64 `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

func toRow(account *domain.Account) *sqlAccount {
	return &sqlAccount{
		ID:            account.ID,
		ClientName:    account.Client.Name,
		ClientTaxID:   account.Client.TaxID,
		Balance:       account.Balance,
		LoanAvailable: account.LoanAvailable,
	}
}

func (row *sqlAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:            row.ID,
		Client:        domain.Client{Name: row.ClientName, TaxID: row.ClientTaxID},
		Balance:       row.Balance,
		LoanAvailable: row.LoanAvailable,
	}
}

// Store 是以 MySQL 為後端的帳戶儲存
// 每次 FindByID 都回傳新的實例，修改後需 Save 才會生效
type Store struct {
	client *mysql.Client
}

func NewStore(client *mysql.Client) *Store {
	return &Store{
		client: client,
	}
}

// Migrate 建立或更新 accounts 表
func (s *Store) Migrate(ctx context.Context) error {
	return s.client.DB().WithContext(ctx).AutoMigrate(&sqlAccount{})
}

// Save 依 ID upsert 帳戶
func (s *Store) Save(ctx context.Context, account *domain.Account) error {
	row := toRow(account)
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"client_name", "client_tax_id", "balance", "loan_available", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert account %s: %w", account.ID, err)
	}
	return nil
}

// FindByID 取得帳戶
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	var row sqlAccount
	err := s.client.DB().WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select account %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// LoadAllAccounts 載入所有帳戶，供記憶體儲存啟動時預熱
func (s *Store) LoadAllAccounts(ctx context.Context) (map[string]*domain.Account, error) {
	var rows []sqlAccount
	if err := s.client.DB().WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	accounts := make(map[string]*domain.Account, len(rows))
	for i := range rows {
		accounts[rows[i].ID] = rows[i].toDomain()
	}
	return accounts, nil
}

var _ usecase.AccountStore = (*Store)(nil)
