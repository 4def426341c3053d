package reports

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/models"
)

func tx(txType models.TransactionType, date, category, amount string) models.Transaction {
	return models.Transaction{
		Type:     txType,
		Date:     date,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
	}
}

func TestSummarize(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.TypeIncome, "2025-01-05", "薪資", "100"),
		tx(models.TypeExpense, "2025-01-10", "餐飲", "30.25"),
		tx(models.TypeExpense, "2025-01-12", "交通", "9.75"),
	}

	summary := Summarize(transactions)
	assert.Equal(t, "100", summary.TotalIncome.String())
	assert.Equal(t, "40", summary.TotalExpense.String())
	assert.Equal(t, "60", summary.Net.String())
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, "0", summary.TotalIncome.String())
	assert.Equal(t, "0", summary.TotalExpense.String())
	assert.Equal(t, "0", summary.Net.String())
}

func TestCategoryBreakdown(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.TypeExpense, "2025-01-10", "餐飲", "10"),
		tx(models.TypeExpense, "2025-01-11", "餐飲", "20"),
		tx(models.TypeExpense, "2025-01-12", "交通", "5"),
		tx(models.TypeIncome, "2025-01-15", "薪資", "100"),
	}

	breakdown := CategoryBreakdown(transactions, models.TypeExpense)
	assert.Equal(t, 2, len(breakdown))
	assert.Equal(t, "30", breakdown["餐飲"].String())
	assert.Equal(t, "5", breakdown["交通"].String())

	income := CategoryBreakdown(transactions, models.TypeIncome)
	assert.Equal(t, 1, len(income))
	assert.Equal(t, "100", income["薪資"].String())
}

func TestMonthlyTrendSortedAscending(t *testing.T) {
	// Deliberately out of order; the projection sorts by month.
	transactions := []models.Transaction{
		tx(models.TypeIncome, "2025-02-03", "薪資", "50"),
		tx(models.TypeIncome, "2025-01-05", "薪資", "100"),
		tx(models.TypeExpense, "2025-01-20", "餐飲", "30"),
		tx(models.TypeExpense, "2024-12-31", "餐飲", "12"),
	}

	trend := MonthlyTrend(transactions)
	assert.Equal(t, 3, len(trend))

	assert.Equal(t, "2024-12", trend[0].Month)
	assert.Equal(t, "12", trend[0].Expense.String())
	assert.Equal(t, "0", trend[0].Income.String())

	assert.Equal(t, "2025-01", trend[1].Month)
	assert.Equal(t, "100", trend[1].Income.String())
	assert.Equal(t, "30", trend[1].Expense.String())

	assert.Equal(t, "2025-02", trend[2].Month)
	assert.Equal(t, "50", trend[2].Income.String())
	assert.Equal(t, "0", trend[2].Expense.String())
}

func TestMonthlyTrendSkipsMalformedDates(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.TypeIncome, "2025-01-05", "薪資", "100"),
		tx(models.TypeIncome, "bad", "薪資", "999"),
	}

	trend := MonthlyTrend(transactions)
	assert.Equal(t, 1, len(trend))
	assert.Equal(t, "2025-01", trend[0].Month)
	assert.Equal(t, "100", trend[0].Income.String())
}
