package reports

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/models"
)

// Pure projections over a transaction list. Nothing here persists state;
// callers recompute whenever the list changes.

type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Net          decimal.Decimal `json:"net"`
}

// Summarize sums amounts grouped by transaction type.
func Summarize(transactions []models.Transaction) Summary {
	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for i := range transactions {
		t := &transactions[i]
		switch t.Type {
		case models.TypeIncome:
			totalIncome = totalIncome.Add(t.Amount)
		case models.TypeExpense:
			totalExpense = totalExpense.Add(t.Amount)
		}
	}
	return Summary{
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Net:          totalIncome.Sub(totalExpense),
	}
}

// CategoryBreakdown sums amounts per category for one transaction type.
func CategoryBreakdown(transactions []models.Transaction, txType models.TransactionType) map[string]decimal.Decimal {
	breakdown := make(map[string]decimal.Decimal)
	for i := range transactions {
		t := &transactions[i]
		if t.Type != txType {
			continue
		}
		breakdown[t.Category] = breakdown[t.Category].Add(t.Amount)
	}
	return breakdown
}

type MonthlyPoint struct {
	Month   string          `json:"month"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// MonthlyTrend sums income and expense per calendar month. Months are the
// union of all months appearing in either series, sorted ascending; the
// YYYY-MM prefix sorts chronologically as a plain string.
func MonthlyTrend(transactions []models.Transaction) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	for i := range transactions {
		t := &transactions[i]
		if len(t.Date) < 7 {
			continue
		}
		month := t.Date[:7]
		point, ok := byMonth[month]
		if !ok {
			point = &MonthlyPoint{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[month] = point
		}
		switch t.Type {
		case models.TypeIncome:
			point.Income = point.Income.Add(t.Amount)
		case models.TypeExpense:
			point.Expense = point.Expense.Add(t.Amount)
		}
	}

	trend := make([]MonthlyPoint, 0, len(byMonth))
	for _, point := range byMonth {
		trend = append(trend, *point)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })
	return trend
}
