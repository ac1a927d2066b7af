package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Currency             string          `json:"currency"`
	Balance              decimal.Decimal `json:"balance"`
	Version              int64           `json:"version"`
	AllowNegativeBalance bool            `json:"allow_negative_balance"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                   a.ID,
		Name:                 a.Name,
		Currency:             a.Currency,
		Balance:              a.Balance,
		Version:              a.Version,
		AllowNegativeBalance: a.AllowNegativeBalance,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// MovementResponse represents a movement in API responses.
type MovementResponse struct {
	ID                   string          `json:"id"`
	AccountID            string          `json:"account_id"`
	Kind                 string          `json:"kind"`
	Amount               decimal.Decimal `json:"amount"`
	CounterpartAccountID *string         `json:"counterpart_account_id,omitempty"`
	SourceEventID        string          `json:"source_event_id"`
	Description          string          `json:"description,omitempty"`
	VoidOfID             *string         `json:"void_of_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// MovementFromDomain converts domain movement to response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:                   m.ID,
		AccountID:            m.AccountID,
		Kind:                 string(m.Kind),
		Amount:               m.Amount,
		CounterpartAccountID: m.CounterpartAccountID,
		SourceEventID:        m.SourceEventID,
		Description:          m.Description,
		VoidOfID:             m.VoidOfID,
		CreatedAt:            m.CreatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// PurchaseOrderResponse represents a purchase order in API responses.
type PurchaseOrderResponse struct {
	ID            string          `json:"id"`
	DistributorID string          `json:"distributor_id"`
	ProductID     string          `json:"product_id"`
	Quantity      int64           `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PurchaseOrderFromDomain converts domain purchase order to response.
func PurchaseOrderFromDomain(po *domain.PurchaseOrder) *PurchaseOrderResponse {
	return &PurchaseOrderResponse{
		ID:            po.ID,
		DistributorID: po.DistributorID,
		ProductID:     po.ProductID,
		Quantity:      po.Quantity,
		UnitCost:      po.UnitCost,
		Total:         po.Total(),
		AmountPaid:    po.AmountPaid,
		Status:        string(po.Status),
		CreatedAt:     po.CreatedAt,
	}
}

// PurchaseOrdersFromDomain converts domain purchase orders to responses.
func PurchaseOrdersFromDomain(orders []*domain.PurchaseOrder) []*PurchaseOrderResponse {
	result := make([]*PurchaseOrderResponse, len(orders))
	for i, po := range orders {
		result[i] = PurchaseOrderFromDomain(po)
	}
	return result
}

// SaleResponse represents a sale in API responses.
type SaleResponse struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	ProductID       string          `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	FreightPerUnit  decimal.Decimal `json:"freight_per_unit"`
	UnitCostBasis   decimal.Decimal `json:"unit_cost_basis"`
	OriginAccountID string          `json:"origin_account_id"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SaleFromDomain converts domain sale to response.
func SaleFromDomain(s *domain.Sale) *SaleResponse {
	return &SaleResponse{
		ID:              s.ID,
		ClientID:        s.ClientID,
		ProductID:       s.ProductID,
		Quantity:        s.Quantity,
		UnitPrice:       s.UnitPrice,
		FreightPerUnit:  s.FreightPerUnit,
		UnitCostBasis:   s.UnitCostBasis,
		OriginAccountID: s.OriginAccountID,
		GrossTotal:      s.GrossTotal(),
		AmountPaid:      s.AmountPaid,
		Outstanding:     s.Outstanding(),
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
	}
}

// SalesFromDomain converts domain sales to responses.
func SalesFromDomain(sales []*domain.Sale) []*SaleResponse {
	result := make([]*SaleResponse, len(sales))
	for i, s := range sales {
		result[i] = SaleFromDomain(s)
	}
	return result
}

// SaleQuoteResponse represents the posting breakdown of a sale quote.
type SaleQuoteResponse struct {
	Gross         decimal.Decimal `json:"gross"`
	Freight       decimal.Decimal `json:"freight"`
	Profit        decimal.Decimal `json:"profit"`
	Retained      decimal.Decimal `json:"retained"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

// SaleQuoteFromUseCase converts a sale quote to response.
func SaleQuoteFromUseCase(q *usecase.SaleQuote) *SaleQuoteResponse {
	return &SaleQuoteResponse{
		Gross:         q.Split.Gross,
		Freight:       q.Split.Freight,
		Profit:        q.Split.Profit,
		Retained:      q.Split.Retained,
		CostBasis:     q.CostBasis,
		MarginPercent: q.MarginPercent,
	}
}

// PartyResponse represents a distributor or client in API responses.
type PartyResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Debt      decimal.Decimal `json:"debt"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DistributorFromDomain converts domain distributor to response.
func DistributorFromDomain(d *domain.Distributor) *PartyResponse {
	return &PartyResponse{
		ID:        d.ID,
		Name:      d.Name,
		Debt:      d.Debt,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// DistributorsFromDomain converts domain distributors to responses.
func DistributorsFromDomain(distributors []*domain.Distributor) []*PartyResponse {
	result := make([]*PartyResponse, len(distributors))
	for i, d := range distributors {
		result[i] = DistributorFromDomain(d)
	}
	return result
}

// ClientFromDomain converts domain client to response.
func ClientFromDomain(c *domain.Client) *PartyResponse {
	return &PartyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Debt:      c.Debt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ClientsFromDomain converts domain clients to responses.
func ClientsFromDomain(clients []*domain.Client) []*PartyResponse {
	result := make([]*PartyResponse, len(clients))
	for i, c := range clients {
		result[i] = ClientFromDomain(c)
	}
	return result
}

// StockLevelResponse represents a product's stock level.
type StockLevelResponse struct {
	ProductID string    `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockLevelFromDomain converts domain stock level to response.
func StockLevelFromDomain(s *domain.StockLevel) *StockLevelResponse {
	return &StockLevelResponse{
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		UpdatedAt: s.UpdatedAt,
	}
}

// TransferResponse represents one leg pair produced by a transfer.
type TransferResponse struct {
	TransferID string            `json:"transfer_id"`
	Out        *MovementResponse `json:"out"`
	In         *MovementResponse `json:"in"`
}

// TransferFromResult converts a transfer result to response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		TransferID: r.TransferID,
		Out:        MovementFromDomain(r.Out),
		In:         MovementFromDomain(r.In),
	}
}

// TransfersFromResults converts transfer results to responses.
func TransfersFromResults(results []*usecase.TransferResult) []*TransferResponse {
	out := make([]*TransferResponse, len(results))
	for i, r := range results {
		out[i] = TransferFromResult(r)
	}
	return out
}

// ConvertResponse represents a currency conversion result.
type ConvertResponse struct {
	TransferID string          `json:"transfer_id"`
	Rate       decimal.Decimal `json:"rate"`
	Debited    decimal.Decimal `json:"debited"`
	Credited   decimal.Decimal `json:"credited"`
}

// ConvertFromResult converts a conversion result to response.
func ConvertFromResult(r *usecase.ConvertResult) *ConvertResponse {
	return &ConvertResponse{
		TransferID: r.TransferID,
		Rate:       r.Rate,
		Debited:    r.Debited,
		Credited:   r.Credited,
	}
}

// ReconciliationResponse represents one account's reconciliation outcome.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	Repaired          bool            `json:"repaired"`
	LastChecked       time.Time       `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		Repaired:          r.Repaired,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationsFromResults converts reconciliation results to responses.
func ReconciliationsFromResults(results []*usecase.ReconciliationResult) []*ReconciliationResponse {
	out := make([]*ReconciliationResponse, len(results))
	for i, r := range results {
		out[i] = ReconciliationFromResult(r)
	}
	return out
}

// ReconciliationReportResponse aggregates a full reconciliation sweep.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromDomain converts a report to response.
func ReconciliationReportFromDomain(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      ReconciliationsFromResults(r.Discrepancies),
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
