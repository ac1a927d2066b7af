package domain

import (
	"errors"
	"testing"
)

func TestStockLevel_ValidateWithdraw(t *testing.T) {
	s := &StockLevel{ProductID: "monte", Quantity: 60}

	if err := s.ValidateWithdraw(60); err != nil {
		t.Errorf("withdrawing exactly the available stock must succeed: %v", err)
	}

	if err := s.ValidateWithdraw(61); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}

	if err := s.ValidateWithdraw(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestStockLevel_IsLowAfterWithdraw(t *testing.T) {
	s := &StockLevel{Quantity: 15}

	if s.IsLowAfterWithdraw(3) {
		t.Error("12 remaining is not low")
	}

	if !s.IsLowAfterWithdraw(10) {
		t.Error("5 remaining is low")
	}
}
