package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
)

// Client 是帳戶服務的 gRPC 客戶端
// 業務錯誤會被還原成 domain 的錯誤，可直接用 errors.Is 判斷
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// CreateAccount 建立帳戶，id 為空時由伺服器產生
func (c *Client) CreateAccount(ctx context.Context, id string, client domain.Client) (*domain.Account, error) {
	out, err := c.invoke(ctx, MethodCreateAccount, map[string]any{
		fieldID: id,
		fieldClient: map[string]any{
			fieldName:  client.Name,
			fieldTaxID: client.TaxID,
		},
	})
	if err != nil {
		return nil, err
	}
	return accountFromStruct(out), nil
}

func (c *Client) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	out, err := c.invoke(ctx, MethodGetAccount, map[string]any{fieldID: id})
	if err != nil {
		return nil, err
	}
	return accountFromStruct(out), nil
}

func (c *Client) Deposit(ctx context.Context, id string, amount float64) (*domain.Account, error) {
	return c.mutate(ctx, MethodDeposit, id, amount)
}

func (c *Client) AddLoanCredit(ctx context.Context, id string, amount float64) (*domain.Account, error) {
	return c.mutate(ctx, MethodAddLoanCredit, id, amount)
}

func (c *Client) TakeLoan(ctx context.Context, id string, amount float64) (*domain.Account, error) {
	return c.mutate(ctx, MethodTakeLoan, id, amount)
}

// Transfer 轉帳，回傳轉帳後的來源與目的帳戶
func (c *Client) Transfer(ctx context.Context, sourceID, destinationID string, amount float64) (source, destination *domain.Account, err error) {
	out, err := c.invoke(ctx, MethodTransfer, map[string]any{
		fieldSourceID:      sourceID,
		fieldDestinationID: destinationID,
		fieldAmount:        amount,
	})
	if err != nil {
		return nil, nil, err
	}
	source = accountFromStruct(out.GetFields()[fieldSource].GetStructValue())
	destination = accountFromStruct(out.GetFields()[fieldDestination].GetStructValue())
	return source, destination, nil
}

func (c *Client) mutate(ctx context.Context, method, id string, amount float64) (*domain.Account, error) {
	out, err := c.invoke(ctx, method, map[string]any{fieldID: id, fieldAmount: amount})
	if err != nil {
		return nil, err
	}
	return accountFromStruct(out), nil
}

func (c *Client) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), req, out); err != nil {
		return nil, fromStatus(err)
	}
	return out, nil
}
