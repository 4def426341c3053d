package services

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/models"
	syncer "github.com/username/fintrack/backend/src/sync"
)

func newTestReportService(t *testing.T) (*LedgerService, *AccountService, *ReportService) {
	t.Helper()
	db := newTestDB(t)
	hub := syncer.NewHub()
	reportCache := cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	ledger := NewLedgerService(db, hub, reportCache)
	return ledger, NewAccountService(db, hub), NewReportService(ledger, reportCache)
}

func TestGetSummary(t *testing.T) {
	ledger, accounts, reportSvc := newTestReportService(t)
	bank := createAccount(t, accounts, "Bank", models.AccountAsset, "bank", "1000")

	_, err := ledger.AddTransaction(testUserID, NewTransactionInput{
		Type: models.TypeIncome, Date: "2025-03-01", Category: "薪資", Description: "月薪",
		Amount: decimal.RequireFromString("100"), AccountID: bank.ID,
	})
	assert.NoError(t, err)
	_, err = ledger.AddTransaction(testUserID, expenseInput(bank.ID, "30"))
	assert.NoError(t, err)

	summary, err := reportSvc.GetSummary(testUserID)
	assert.NoError(t, err)
	assert.Equal(t, "100", summary.TotalIncome.String())
	assert.Equal(t, "30", summary.TotalExpense.String())
	assert.Equal(t, "70", summary.Net.String())
}

func TestGetSummaryCacheInvalidatedByMutation(t *testing.T) {
	ledger, accounts, reportSvc := newTestReportService(t)
	bank := createAccount(t, accounts, "Bank", models.AccountAsset, "bank", "1000")

	summary, err := reportSvc.GetSummary(testUserID)
	assert.NoError(t, err)
	assert.Equal(t, "0", summary.Net.String())

	// The mutation drops the cached projection, so the next read recomputes.
	_, err = ledger.AddTransaction(testUserID, expenseInput(bank.ID, "25"))
	assert.NoError(t, err)

	summary, err = reportSvc.GetSummary(testUserID)
	assert.NoError(t, err)
	assert.Equal(t, "25", summary.TotalExpense.String())
	assert.Equal(t, "-25", summary.Net.String())
}

func TestGetCategoryBreakdown(t *testing.T) {
	ledger, accounts, reportSvc := newTestReportService(t)
	bank := createAccount(t, accounts, "Bank", models.AccountAsset, "bank", "1000")

	add := func(category, amount string) {
		t.Helper()
		_, err := ledger.AddTransaction(testUserID, NewTransactionInput{
			Type: models.TypeExpense, Date: "2025-03-10", Category: category, Description: "x",
			Amount: decimal.RequireFromString(amount), AccountID: bank.ID,
		})
		assert.NoError(t, err)
	}
	add("餐飲", "10")
	add("餐飲", "15")
	add("交通", "5")

	breakdown, err := reportSvc.GetCategoryBreakdown(testUserID, models.TypeExpense)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(breakdown))
	assert.Equal(t, "25", breakdown["餐飲"].String())
	assert.Equal(t, "5", breakdown["交通"].String())

	_, err = reportSvc.GetCategoryBreakdown(testUserID, "bogus")
	assert.Error(t, err)
}

func TestGetMonthlyTrend(t *testing.T) {
	ledger, accounts, reportSvc := newTestReportService(t)
	bank := createAccount(t, accounts, "Bank", models.AccountAsset, "bank", "1000")

	add := func(txType models.TransactionType, date, amount string) {
		t.Helper()
		_, err := ledger.AddTransaction(testUserID, NewTransactionInput{
			Type: txType, Date: date, Category: "x", Description: "x",
			Amount: decimal.RequireFromString(amount), AccountID: bank.ID,
		})
		assert.NoError(t, err)
	}
	add(models.TypeIncome, "2025-01-05", "100")
	add(models.TypeExpense, "2025-01-20", "30")
	add(models.TypeIncome, "2025-02-03", "50")

	trend, err := reportSvc.GetMonthlyTrend(testUserID)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(trend))
	assert.Equal(t, "2025-01", trend[0].Month)
	assert.Equal(t, "100", trend[0].Income.String())
	assert.Equal(t, "30", trend[0].Expense.String())
	assert.Equal(t, "2025-02", trend[1].Month)
	assert.Equal(t, "50", trend[1].Income.String())
	assert.Equal(t, "0", trend[1].Expense.String())
}
