package grpc

import (
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
)

// 訊息欄位
//
//	CreateAccount: {id?, client: {name, tax_id}}          -> account
//	GetAccount:    {id}                                   -> account
//	Deposit:       {id, amount}                           -> account
//	Transfer:      {source_id, destination_id, amount}    -> {source: account, destination: account}
//	AddLoanCredit: {id, amount}                           -> account
//	TakeLoan:      {id, amount}                           -> account
//
// account: {id, client: {name, tax_id}, balance, loan_available}
const (
	fieldID            = "id"
	fieldClient        = "client"
	fieldName          = "name"
	fieldTaxID         = "tax_id"
	fieldAmount        = "amount"
	fieldSourceID      = "source_id"
	fieldDestinationID = "destination_id"
	fieldBalance       = "balance"
	fieldLoanAvailable = "loan_available"
	fieldSource        = "source"
	fieldDestination   = "destination"
)

func accountFields(account *domain.Account) map[string]any {
	return map[string]any{
		fieldID: account.ID,
		fieldClient: map[string]any{
			fieldName:  account.Client.Name,
			fieldTaxID: account.Client.TaxID,
		},
		fieldBalance:       account.Balance,
		fieldLoanAvailable: account.LoanAvailable,
	}
}

func accountFromStruct(s *structpb.Struct) *domain.Account {
	return &domain.Account{
		ID:            stringField(s, fieldID),
		Client:        clientFromStruct(s.GetFields()[fieldClient].GetStructValue()),
		Balance:       s.GetFields()[fieldBalance].GetNumberValue(),
		LoanAvailable: s.GetFields()[fieldLoanAvailable].GetNumberValue(),
	}
}

func clientFromStruct(s *structpb.Struct) domain.Client {
	return domain.Client{
		Name:  stringField(s, fieldName),
		TaxID: stringField(s, fieldTaxID),
	}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// requiredString 必填字串欄位
func requiredString(s *structpb.Struct, key string) (string, error) {
	v := stringField(s, key)
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "field %q is required", key)
	}
	return v, nil
}

// numberField 必填數字欄位，只接受有限數，金額的正負檢查交給 domain
func numberField(s *structpb.Struct, key string) (float64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "field %q is required", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be a number", key)
	}
	if math.IsNaN(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be a finite number", key)
	}
	return n.NumberValue, nil
}
