package grpc

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
)

// ErrorDomain 是 ErrorInfo.Domain 的值
const ErrorDomain = "ledger.v1"

const (
	ReasonAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ReasonInvalidAmount       = "INVALID_AMOUNT"
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	ReasonNegativeValue       = "NEGATIVE_VALUE"
	ReasonInvalidBalance      = "INVALID_BALANCE"
)

var reasons = []struct {
	err    error
	code   codes.Code
	reason string
}{
	{domain.ErrAccountNotFound, codes.NotFound, ReasonAccountNotFound},
	{domain.ErrInvalidAmount, codes.InvalidArgument, ReasonInvalidAmount},
	{domain.ErrNegativeValue, codes.InvalidArgument, ReasonNegativeValue},
	{domain.ErrInsufficientBalance, codes.FailedPrecondition, ReasonInsufficientBalance},
	{domain.ErrInvalidBalance, codes.FailedPrecondition, ReasonInvalidBalance},
}

// toStatus 將 domain 錯誤轉為 gRPC status，並附上 ErrorInfo 讓 client 還原錯誤種類
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, r := range reasons {
		if !errors.Is(err, r.err) {
			continue
		}
		info := &errdetails.ErrorInfo{Reason: r.reason, Domain: ErrorDomain}
		var nf *domain.AccountNotFoundError
		if errors.As(err, &nf) {
			info.Metadata = map[string]string{"account_id": nf.ID, "role": nf.Role}
		}
		st := status.New(r.code, err.Error())
		if detailed, derr := st.WithDetails(info); derr == nil {
			st = detailed
		}
		return st.Err()
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus 依 ErrorInfo 還原 domain 錯誤，無法辨識時原樣回傳
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		if info.GetReason() == ReasonAccountNotFound {
			return domain.NewAccountNotFoundError(info.GetMetadata()["account_id"], info.GetMetadata()["role"])
		}
		for _, r := range reasons {
			if r.reason == info.GetReason() {
				return r.err
			}
		}
	}
	return err
}
