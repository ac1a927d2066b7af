package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound           = errors.New("account not found")
	ErrNegativeBalanceNotAllowed = errors.New("account does not allow negative balance")
	ErrSameAccount               = errors.New("cannot move funds to the same account")
	ErrCurrencyMismatch          = errors.New("cannot move funds between different currencies")
	ErrSameCurrency              = errors.New("conversion requires accounts in different currencies")

	// Ledger event errors
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidCost     = errors.New("unit cost must not be negative")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidRate     = errors.New("exchange rate must be positive")

	// Stock errors
	ErrInsufficientStock = errors.New("insufficient stock for sale")
	ErrNoCostBasis       = errors.New("no open purchase orders to derive cost basis")

	// Purchase order errors
	ErrDuplicateOrder = errors.New("purchase order already processed")
	ErrOrderNotFound  = errors.New("purchase order not found")
	ErrOrderSettled   = errors.New("purchase order already settled")

	// Sale errors
	ErrSaleNotFound            = errors.New("sale not found")
	ErrInvalidStatusTransition = errors.New("sale status cannot regress")
	ErrPaymentExceedsDebt      = errors.New("payment exceeds outstanding debt")

	// Party errors
	ErrDistributorNotFound = errors.New("distributor not found")
	ErrClientNotFound      = errors.New("client not found")

	// Movement errors
	ErrMovementNotFound    = errors.New("movement not found")
	ErrMovementVoided      = errors.New("movement already voided")
	ErrInvalidMovementKind = errors.New("invalid movement kind")

	// ErrConflict is surfaced unchanged from the store when a concurrent
	// transaction touched the same rows; callers retry with the same inputs.
	ErrConflict = errors.New("conflicting concurrent update")
)
