package dto

import (
	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name                 string `json:"name"`
	Currency             string `json:"currency"`
	AllowNegativeBalance bool   `json:"allow_negative_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:                 r.Name,
		Currency:             r.Currency,
		AllowNegativeBalance: r.AllowNegativeBalance,
	}
}

// ReceiveOrderRequest represents an incoming purchase order. The OC number
// identifies the order and guards against duplicate submission.
type ReceiveOrderRequest struct {
	OrderID         string          `json:"order_id"`
	DistributorID   string          `json:"distributor_id"`
	DistributorName string          `json:"distributor_name"`
	ProductID       string          `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// ToUseCaseInput converts to use case input.
func (r *ReceiveOrderRequest) ToUseCaseInput() usecase.ReceiveOrderInput {
	return usecase.ReceiveOrderInput{
		OrderID:         r.OrderID,
		DistributorID:   r.DistributorID,
		DistributorName: r.DistributorName,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
		UnitCost:        r.UnitCost,
	}
}

// DistributorPaymentRequest represents an abono against a purchase order.
type DistributorPaymentRequest struct {
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *DistributorPaymentRequest) ToUseCaseInput(orderID string) usecase.DistributorPaymentInput {
	return usecase.DistributorPaymentInput{
		OrderID:   orderID,
		AccountID: r.AccountID,
		Amount:    r.Amount,
	}
}

// RecordSaleRequest represents an incoming sale.
type RecordSaleRequest struct {
	ClientID       string          `json:"client_id"`
	ClientName     string          `json:"client_name"`
	ProductID      string          `json:"product_id"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	FreightPerUnit decimal.Decimal `json:"freight_per_unit"`
	InitialPayment decimal.Decimal `json:"initial_payment"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordSaleRequest) ToUseCaseInput() usecase.RecordSaleInput {
	return usecase.RecordSaleInput{
		ClientID:       r.ClientID,
		ClientName:     r.ClientName,
		ProductID:      r.ProductID,
		Quantity:       r.Quantity,
		UnitPrice:      r.UnitPrice,
		FreightPerUnit: r.FreightPerUnit,
		InitialPayment: r.InitialPayment,
	}
}

// ClientPaymentRequest represents an abono from a client against a sale.
type ClientPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *ClientPaymentRequest) ToUseCaseInput(saleID string) usecase.ClientPaymentInput {
	return usecase.ClientPaymentInput{
		SaleID: saleID,
		Amount: r.Amount,
	}
}

// CreateTransferRequest represents a request to move funds between
// same-currency accounts.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description,
	}
}

// CreateBatchTransferRequest represents a request to create multiple
// transfers atomically.
type CreateBatchTransferRequest struct {
	Transfers []CreateTransferRequest `json:"transfers"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBatchTransferRequest) ToUseCaseInput() usecase.CreateBatchTransferInput {
	transfers := make([]usecase.CreateTransferInput, len(r.Transfers))
	for i, t := range r.Transfers {
		transfers[i] = t.ToUseCaseInput()
	}
	return usecase.CreateBatchTransferInput{Transfers: transfers}
}

// ConvertRequest represents a cross-currency conversion. Rate is optional:
// when omitted the configured provider supplies it.
type ConvertRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Rate          decimal.Decimal `json:"rate,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ConvertRequest) ToUseCaseInput() usecase.ConvertInput {
	return usecase.ConvertInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Rate:          r.Rate,
		Description:   r.Description,
	}
}

// RecordEntryRequest represents an ad-hoc income or expense entry.
type RecordEntryRequest struct {
	AccountID   string          `json:"account_id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordEntryRequest) ToUseCaseInput() usecase.RecordEntryInput {
	return usecase.RecordEntryInput{
		AccountID:   r.AccountID,
		Kind:        domain.MovementKind(r.Kind),
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// VoidMovementRequest represents a request to void a movement.
type VoidMovementRequest struct {
	Reason string `json:"reason,omitempty"`
}

// QuoteSaleRequest represents a sale quote preview.
type QuoteSaleRequest struct {
	ProductID      string          `json:"product_id"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	FreightPerUnit decimal.Decimal `json:"freight_per_unit"`
}
