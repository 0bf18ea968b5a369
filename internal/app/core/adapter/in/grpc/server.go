package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
)

// RequestIDKey 是 request id 的 metadata key
const RequestIDKey = "x-request-id"

type GrpcServer struct {
	core *usecase.AccountUseCase
}

func NewGrpcServer(core *usecase.AccountUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

// CreateAccount 建立帳戶，未帶 id 時產生 UUID
func (s *GrpcServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, fieldID)
	if id == "" {
		id = uuid.NewString()
	}
	client := clientFromStruct(req.GetFields()[fieldClient].GetStructValue())

	if err := s.core.CreateAccount(ctx, domain.NewAccount(id, client)); err != nil {
		return nil, toStatus(err)
	}
	return s.accountResponse(ctx, id)
}

func (s *GrpcServer) GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, fieldID)
	if err != nil {
		return nil, err
	}
	return s.accountResponse(ctx, id)
}

func (s *GrpcServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.mutate(ctx, req, s.core.Deposit)
}

func (s *GrpcServer) AddLoanCredit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.mutate(ctx, req, s.core.AddLoanCredit)
}

func (s *GrpcServer) TakeLoan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.mutate(ctx, req, s.core.TakeLoan)
}

// Transfer 轉帳，回傳兩個帳戶在轉帳完成當下的狀態
func (s *GrpcServer) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sourceID, err := requiredString(req, fieldSourceID)
	if err != nil {
		return nil, err
	}
	destinationID, err := requiredString(req, fieldDestinationID)
	if err != nil {
		return nil, err
	}
	amount, err := numberField(req, fieldAmount)
	if err != nil {
		return nil, err
	}

	source, destination, err := s.core.TransferWithResult(ctx, sourceID, destinationID, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		fieldSource:      accountFields(&source),
		fieldDestination: accountFields(&destination),
	})
}

// mutate 處理 {id, amount} 形式的單帳戶操作
// 回傳的帳戶是操作完成後另外讀取的，期間若有其他請求修改同一帳戶，會一併反映在結果中
func (s *GrpcServer) mutate(ctx context.Context, req *structpb.Struct, op func(context.Context, string, float64) error) (*structpb.Struct, error) {
	id, err := requiredString(req, fieldID)
	if err != nil {
		return nil, err
	}
	amount, err := numberField(req, fieldAmount)
	if err != nil {
		return nil, err
	}
	if err := op(ctx, id, amount); err != nil {
		return nil, toStatus(err)
	}
	return s.accountResponse(ctx, id)
}

func (s *GrpcServer) accountResponse(ctx context.Context, id string) (*structpb.Struct, error) {
	account, err := s.core.FindAccount(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(accountFields(account))
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// LoggingInterceptor 記錄每個請求的方法、狀態碼與耗時
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed", time.Since(start),
		}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDKey); len(ids) > 0 {
				attrs = append(attrs, "request_id", ids[0])
			}
		}
		if err != nil {
			logger.WarnContext(ctx, "grpc.request", append(attrs, "err", err)...)
		} else {
			logger.DebugContext(ctx, "grpc.request", attrs...)
		}
		return resp, err
	}
}

var _ AccountServiceServer = (*GrpcServer)(nil)
