package services

import (
	"database/sql"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	syncer "github.com/username/fintrack/backend/src/sync"
	_ "modernc.org/sqlite"
)

const testUserID int64 = 1

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// newTestDB opens a fresh in-memory database with the full schema. A single
// connection keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServices(t *testing.T) (*LedgerService, *AccountService, *TaxonomyService) {
	t.Helper()
	db := newTestDB(t)
	hub := syncer.NewHub()
	return NewLedgerService(db, hub, nil), NewAccountService(db, hub), NewTaxonomyService(db, hub)
}

func createAccount(t *testing.T, accounts *AccountService, name string, accountType models.AccountType, category, balance string) *models.Account {
	t.Helper()
	account, err := accounts.CreateAccount(testUserID, name, accountType, category, decimal.RequireFromString(balance))
	if err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return account
}

func accountBalance(t *testing.T, accounts *AccountService, id string) string {
	t.Helper()
	account, err := accounts.GetAccount(testUserID, id)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return account.Balance.String()
}
