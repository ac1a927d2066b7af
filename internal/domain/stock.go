package domain

import "time"

// StockLevel is the derived per-product inventory counter:
// sum of purchase quantities minus sum of sale quantities. It must never
// go negative at the moment a sale is validated.
type StockLevel struct {
	ProductID string
	Quantity  int64
	UpdatedAt time.Time
}

// ValidateWithdraw checks that qty units can leave the warehouse.
func (s *StockLevel) ValidateWithdraw(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	if qty > s.Quantity {
		return ErrInsufficientStock
	}

	return nil
}

// LowStockThreshold mirrors the warehouse warning level: a sale leaving
// fewer units than this is flagged to the caller, not rejected.
const LowStockThreshold = 10

// IsLowAfterWithdraw reports whether stock would be low after removing qty.
func (s *StockLevel) IsLowAfterWithdraw(qty int64) bool {
	remaining := s.Quantity - qty
	return remaining >= 0 && remaining < LowStockThreshold
}
