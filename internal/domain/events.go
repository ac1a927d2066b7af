package domain

import "time"

// Event types
const (
	EventTypeOrderReceived   = "purchase_order.received"
	EventTypeSaleRecorded    = "sale.recorded"
	EventTypeSalePaid        = "sale.paid"
	EventTypePaymentApplied  = "payment.applied"
	EventTypeTransferCreated = "transfer.created"
	EventTypeAccountCreated  = "account.created"
	EventTypeExpenseRecorded = "expense.recorded"
)

// Aggregate types
const (
	AggregateTypeOrder    = "purchase_order"
	AggregateTypeSale     = "sale"
	AggregateTypeTransfer = "transfer"
	AggregateTypeAccount  = "account"
	AggregateTypeMovement = "movement"
)

// OutboxEvent represents an event written in the same transaction as the
// ledger state it describes, to be published after commit. Payload holds
// one of the typed event structs below on the write path and decodes to a
// generic map on the read path.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// OrderReceivedEvent payload
type OrderReceivedEvent struct {
	OrderID       string `json:"order_id"`
	DistributorID string `json:"distributor_id"`
	ProductID     string `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	Total         string `json:"total"`
}

// SaleRecordedEvent payload
type SaleRecordedEvent struct {
	SaleID    string `json:"sale_id"`
	ClientID  string `json:"client_id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Gross     string `json:"gross"`
	Status    string `json:"status"`
}

// PaymentAppliedEvent payload, shared by client abonos against sales and
// distributor abonos against purchase orders.
type PaymentAppliedEvent struct {
	SourceID string `json:"source_id"`
	SaleID   string `json:"sale_id,omitempty"`
	PartyID  string `json:"party_id"`
	Amount   string `json:"amount"`
	Status   string `json:"status,omitempty"`
}

// TransferCreatedEvent payload
type TransferCreatedEvent struct {
	TransferID    string `json:"transfer_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

// ConversionEvent payload for cross-currency transfers.
type ConversionEvent struct {
	TransferID    string `json:"transfer_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Debited       string `json:"debited"`
	Credited      string `json:"credited"`
	Rate          string `json:"rate"`
}

// MovementRecordedEvent payload for standalone income and expense entries.
type MovementRecordedEvent struct {
	MovementID string `json:"movement_id"`
	AccountID  string `json:"account_id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
}
