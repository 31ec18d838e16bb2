// Package ledger holds the pure balance arithmetic shared by the transaction
// engine and its tests.
package ledger

import (
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the maximum permitted |Σdebit - Σcredit| for a
// ledger-typed transaction, in currency units.
var BalanceTolerance = decimal.RequireFromString("0.01")

// Totals sums the debit and credit sides of a set of lines.
func Totals(lines []domain.TransactionLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}
	return debits, credits
}

// IsBalanced reports whether debits equal credits within BalanceTolerance.
func IsBalanced(lines []domain.TransactionLine) bool {
	debits, credits := Totals(lines)
	return debits.Sub(credits).Abs().LessThanOrEqual(BalanceTolerance)
}

// TotalAmount computes a transaction's total as the sum of absolute line
// amounts, used when the header does not supply one.
func TotalAmount(lines []domain.TransactionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineAmount.Abs())
	}
	return total
}

// InvertLines produces the sign-inverted mirror of lines for a compensating
// reversal entry: debit and credit legs swap, line amounts negate.
func InvertLines(lines []domain.TransactionLine) []domain.TransactionLine {
	inverted := make([]domain.TransactionLine, len(lines))
	for i, l := range lines {
		m := l
		m.DebitAmount = l.CreditAmount
		m.CreditAmount = l.DebitAmount
		m.LineAmount = l.LineAmount.Neg()
		inverted[i] = m
	}
	return inverted
}
