package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Posting is a proposed ledger write. The engine computes postings as pure
// data; the store applies them atomically together with the balance and
// stock counter updates. No posting is produced when any precondition
// fails.
type Posting struct {
	AccountID            string
	Kind                 MovementKind
	Amount               decimal.Decimal
	CounterpartAccountID *string
	Description          string
}

// SaleAccounts names the three fixed destinations of sale proceeds.
type SaleAccounts struct {
	PrimaryID string
	FreightID string
	ProfitID  string
}

// SaleSplit is the breakdown of a sale's gross income. The three shares
// sum to the gross exactly: Retained absorbs any rounding remainder so no
// cent leaks across the postings.
type SaleSplit struct {
	Gross    decimal.Decimal
	Freight  decimal.Decimal
	Profit   decimal.Decimal
	Retained decimal.Decimal
}

const moneyScale = 2

// money rounds to cents, half-up, at the final posting amount only.
// Intermediate products stay unrounded so rounding error never compounds.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// ComputeSaleSplit distributes the gross sale income across the primary,
// freight, and profit accounts:
//
//	gross   = unitPrice × qty
//	freight = freightPerUnit × qty
//	profit  = (unitPrice − costBasis − freightPerUnit) × qty
//	retained = gross − freight − profit   (≈ costBasis × qty)
//
// Retained is what the primary account keeps after the carve-outs. Profit
// may be negative when the sale price does not cover cost plus freight.
func ComputeSaleSplit(unitPrice, costBasis, freightPerUnit decimal.Decimal, qty int64) (SaleSplit, error) {
	if qty <= 0 {
		return SaleSplit{}, ErrInvalidQuantity
	}

	if unitPrice.IsNegative() {
		return SaleSplit{}, ErrInvalidPrice
	}

	if freightPerUnit.IsNegative() || costBasis.IsNegative() {
		return SaleSplit{}, ErrInvalidCost
	}

	quantity := decimal.NewFromInt(qty)

	gross := money(unitPrice.Mul(quantity))
	freight := money(freightPerUnit.Mul(quantity))
	profit := money(unitPrice.Sub(costBasis).Sub(freightPerUnit).Mul(quantity))
	retained := gross.Sub(freight).Sub(profit)

	return SaleSplit{
		Gross:    gross,
		Freight:  freight,
		Profit:   profit,
		Retained: retained,
	}, nil
}

// CarveOutPostings builds the freight and profit transfers of a sale
// split. The gross income is recorded through staged payments; once it is
// complete only the carve-outs remain to be posted. A negative profit
// reverses the direction of the profit transfer. All-or-nothing: the
// caller commits the whole set in one transaction or none of it.
func CarveOutPostings(sale *Sale, split SaleSplit, accounts SaleAccounts) ([]Posting, error) {
	if accounts.PrimaryID == accounts.FreightID || accounts.PrimaryID == accounts.ProfitID {
		return nil, ErrSameAccount
	}

	var postings []Posting

	if split.Freight.IsPositive() {
		postings = append(postings, transferPair(
			accounts.PrimaryID, accounts.FreightID, split.Freight,
			fmt.Sprintf("flete venta %s - %d pzas", sale.ClientID, sale.Quantity),
		)...)
	}

	if !split.Profit.IsZero() {
		from, to := accounts.PrimaryID, accounts.ProfitID
		amount := split.Profit
		if amount.IsNegative() {
			from, to = to, from
			amount = amount.Abs()
		}

		postings = append(postings, transferPair(
			from, to, amount,
			fmt.Sprintf("utilidad venta %s - %d pzas", sale.ClientID, sale.Quantity),
		)...)
	}

	return postings, nil
}

// transferPair builds the out/in posting pair for an internal transfer.
func transferPair(fromID, toID string, amount decimal.Decimal, description string) []Posting {
	return []Posting{
		{
			AccountID:            fromID,
			Kind:                 MovementTransferOut,
			Amount:               amount,
			CounterpartAccountID: &toID,
			Description:          description,
		},
		{
			AccountID:            toID,
			Kind:                 MovementTransferIn,
			Amount:               amount,
			CounterpartAccountID: &fromID,
			Description:          description,
		},
	}
}

// WeightedAverageCost derives the unit cost basis from the open purchase
// orders of a product: total cost divided by total quantity. The result is
// intentionally unrounded; rounding happens once, at the posting amounts.
func WeightedAverageCost(orders []*PurchaseOrder) (decimal.Decimal, error) {
	totalQty := decimal.Zero
	totalCost := decimal.Zero

	for _, po := range orders {
		qty := decimal.NewFromInt(po.Quantity)
		totalQty = totalQty.Add(qty)
		totalCost = totalCost.Add(po.UnitCost.Mul(qty))
	}

	if !totalQty.IsPositive() {
		return decimal.Zero, ErrNoCostBasis
	}

	return totalCost.Div(totalQty), nil
}

// ProfitMarginPercent is the margin relative to the sale price.
func ProfitMarginPercent(unitPrice, costBasis, freightPerUnit decimal.Decimal) (decimal.Decimal, error) {
	if !unitPrice.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}

	perUnit := unitPrice.Sub(costBasis).Sub(freightPerUnit)

	return perUnit.Div(unitPrice).Mul(decimal.NewFromInt(100)), nil
}
