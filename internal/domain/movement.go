package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind classifies a ledger movement.
type MovementKind string

const (
	MovementIncome      MovementKind = "income"
	MovementExpense     MovementKind = "expense"
	MovementTransferIn  MovementKind = "transfer_in"
	MovementTransferOut MovementKind = "transfer_out"
)

var validMovementKinds = map[MovementKind]bool{
	MovementIncome:      true,
	MovementExpense:     true,
	MovementTransferIn:  true,
	MovementTransferOut: true,
}

// IsValid reports whether the kind is one of the four movement kinds.
func (k MovementKind) IsValid() bool {
	return validMovementKinds[k]
}

// Movement is an immutable ledger record. Amount is always positive; the
// kind carries the sign. Movements are never mutated or deleted after
// creation: a mistake is undone with a compensating movement that points
// back at the original via VoidOfID.
type Movement struct {
	ID                   string
	AccountID            string
	Kind                 MovementKind
	Amount               decimal.Decimal
	CounterpartAccountID *string
	SourceEventID        string
	Description          string
	VoidOfID             *string
	CreatedAt            time.Time
	Seq                  int64
}

// Validate checks the movement invariants at construction time.
func (m *Movement) Validate() error {
	if !m.Kind.IsValid() {
		return ErrInvalidMovementKind
	}

	if m.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if m.Kind == MovementTransferIn || m.Kind == MovementTransferOut {
		if m.CounterpartAccountID == nil {
			return ErrAccountNotFound
		}
		if *m.CounterpartAccountID == m.AccountID {
			return ErrSameAccount
		}
	}

	return nil
}

// SignedAmount returns the amount with the sign implied by the kind:
// positive for money entering the account, negative for money leaving it.
func (m *Movement) SignedAmount() decimal.Decimal {
	switch m.Kind {
	case MovementIncome, MovementTransferIn:
		return m.Amount
	default:
		return m.Amount.Neg()
	}
}

// CompensatingKind returns the kind that reverses this movement.
func (m *Movement) CompensatingKind() MovementKind {
	switch m.Kind {
	case MovementIncome:
		return MovementExpense
	case MovementExpense:
		return MovementIncome
	case MovementTransferIn:
		return MovementTransferOut
	default:
		return MovementTransferIn
	}
}

// RecomputeBalance folds an account's movement history into a balance.
// Movements are totally ordered by timestamp, then by insertion sequence to
// break ties, so the result is deterministic for the same history. The
// input slice is not modified.
func RecomputeBalance(movements []*Movement) decimal.Decimal {
	ordered := make([]*Movement, len(movements))
	copy(ordered, movements)

	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	balance := decimal.Zero
	for _, m := range ordered {
		balance = balance.Add(m.SignedAmount())
	}

	return balance
}
