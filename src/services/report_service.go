package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/reports"
)

const (
	// Cached projection results, one keyspace per report per user.
	ckSummary      = "res_summary_user_%d"
	ckBreakdown    = "res_breakdown_%s_user_%d"
	ckMonthlyTrend = "res_monthly_trend_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// InvalidateReportCache clears every cached projection for a user, forcing a
// full recompute on the next report read.
func InvalidateReportCache(reportCache *cache.Cache, userID int64) {
	keysToDelete := []string{
		fmt.Sprintf(ckSummary, userID),
		fmt.Sprintf(ckBreakdown, models.TypeExpense, userID),
		fmt.Sprintf(ckBreakdown, models.TypeIncome, userID),
		fmt.Sprintf(ckMonthlyTrend, userID),
	}
	for _, key := range keysToDelete {
		reportCache.Delete(key)
	}
	logger.L.Debug("Invalidated report caches for user", "userID", userID)
}

// ReportService serves the derived views. Projections are pure functions of
// the transaction list; the cache only memoizes them between mutations.
type ReportService struct {
	ledger      *LedgerService
	reportCache *cache.Cache
}

func NewReportService(ledger *LedgerService, reportCache *cache.Cache) *ReportService {
	return &ReportService{ledger: ledger, reportCache: reportCache}
}

func (s *ReportService) GetSummary(userID int64) (reports.Summary, error) {
	cacheKey := fmt.Sprintf(ckSummary, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for summary", "userID", userID)
		return cached.(reports.Summary), nil
	}

	transactions, err := s.ledger.ListTransactions(userID, TransactionFilter{})
	if err != nil {
		return reports.Summary{}, err
	}
	summary := reports.Summarize(transactions)
	s.reportCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *ReportService) GetCategoryBreakdown(userID int64, txType models.TransactionType) (map[string]decimal.Decimal, error) {
	if !txType.Valid() {
		return nil, fmt.Errorf("invalid transaction type %q", txType)
	}
	cacheKey := fmt.Sprintf(ckBreakdown, txType, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for category breakdown", "userID", userID, "type", txType)
		return cached.(map[string]decimal.Decimal), nil
	}

	transactions, err := s.ledger.ListTransactions(userID, TransactionFilter{})
	if err != nil {
		return nil, err
	}
	breakdown := reports.CategoryBreakdown(transactions, txType)
	s.reportCache.Set(cacheKey, breakdown, DefaultCacheExpiration)
	return breakdown, nil
}

func (s *ReportService) GetMonthlyTrend(userID int64) ([]reports.MonthlyPoint, error) {
	cacheKey := fmt.Sprintf(ckMonthlyTrend, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for monthly trend", "userID", userID)
		return cached.([]reports.MonthlyPoint), nil
	}

	transactions, err := s.ledger.ListTransactions(userID, TransactionFilter{})
	if err != nil {
		return nil, err
	}
	trend := reports.MonthlyTrend(transactions)
	s.reportCache.Set(cacheKey, trend, DefaultCacheExpiration)
	return trend, nil
}
