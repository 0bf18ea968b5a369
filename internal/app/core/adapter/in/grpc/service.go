package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPC 服務名稱
const ServiceName = "ledger.v1.AccountService"

const (
	MethodCreateAccount = "CreateAccount"
	MethodGetAccount    = "GetAccount"
	MethodDeposit       = "Deposit"
	MethodTransfer      = "Transfer"
	MethodAddLoanCredit = "AddLoanCredit"
	MethodTakeLoan      = "TakeLoan"
)

// AccountServiceServer 是帳戶服務的 gRPC 介面
// 訊息統一使用 structpb.Struct，欄位定義見 messages.go
type AccountServiceServer interface {
	CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AddLoanCredit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	TakeLoan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AccountServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// AccountServiceDesc 手動宣告的 ServiceDesc (等同 protoc 產生的 _ServiceDesc)
var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateAccount, Handler: unaryHandler(MethodCreateAccount, AccountServiceServer.CreateAccount)},
		{MethodName: MethodGetAccount, Handler: unaryHandler(MethodGetAccount, AccountServiceServer.GetAccount)},
		{MethodName: MethodDeposit, Handler: unaryHandler(MethodDeposit, AccountServiceServer.Deposit)},
		{MethodName: MethodTransfer, Handler: unaryHandler(MethodTransfer, AccountServiceServer.Transfer)},
		{MethodName: MethodAddLoanCredit, Handler: unaryHandler(MethodAddLoanCredit, AccountServiceServer.AddLoanCredit)},
		{MethodName: MethodTakeLoan, Handler: unaryHandler(MethodTakeLoan, AccountServiceServer.TakeLoan)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterAccountServiceServer 註冊帳戶服務
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

// FullMethod 回傳 "/ledger.v1.AccountService/<method>"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
