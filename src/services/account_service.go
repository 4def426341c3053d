package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	syncer "github.com/username/fintrack/backend/src/sync"
)

// AccountService owns account documents. Balance changes made here are the
// user's manual corrections only; transaction and transfer driven balance
// changes go through the LedgerService so they are never double-applied.
type AccountService struct {
	db  *sql.DB
	hub *syncer.Hub
}

func NewAccountService(db *sql.DB, hub *syncer.Hub) *AccountService {
	return &AccountService{db: db, hub: hub}
}

func scanAccount(row interface{ Scan(...interface{}) error }) (*models.Account, error) {
	var account models.Account
	var balanceStr string
	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.Type,
		&account.Category, &balanceStr, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance %q for account %s: %w", balanceStr, account.ID, err)
	}
	return &account, nil
}

func (s *AccountService) ListAccounts(userID int64) ([]models.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, type, category, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

func (s *AccountService) GetAccount(userID int64, id string) (*models.Account, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, name, type, category, balance, created_at, updated_at
		FROM accounts
		WHERE id = ? AND user_id = ?`, id, userID)
	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrAccountNotFound
	}
	return account, err
}

// CreateAccount stores a new account with the balance set verbatim. Names
// are free text with no uniqueness constraint.
func (s *AccountService) CreateAccount(userID int64, name string, accountType models.AccountType, category string, initialBalance decimal.Decimal) (*models.Account, error) {
	if !models.ValidAccountCategory(accountType, category) {
		return nil, fmt.Errorf("invalid category %q for account type %q", category, accountType)
	}

	now := time.Now()
	account := &models.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      accountType,
		Category:  category,
		Balance:   initialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.Exec(`
		INSERT INTO accounts (id, user_id, name, type, category, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.UserID, account.Name, account.Type, account.Category,
		account.Balance.String(), account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting account: %w", err)
	}

	logger.L.Info("Account created", "userID", userID, "accountID", account.ID, "type", account.Type)
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "created", UserID: userID, Payload: account})
	return account, nil
}

// UpdateAccount replaces name, type, category and balance wholesale.
func (s *AccountService) UpdateAccount(userID int64, id, name string, accountType models.AccountType, category string, balance decimal.Decimal) (*models.Account, error) {
	if !models.ValidAccountCategory(accountType, category) {
		return nil, fmt.Errorf("invalid category %q for account type %q", category, accountType)
	}

	now := time.Now()
	res, err := s.db.Exec(`
		UPDATE accounts
		SET name = ?, type = ?, category = ?, balance = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		name, accountType, category, balance.String(), now, id, userID)
	if err != nil {
		return nil, fmt.Errorf("error updating account %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, models.ErrAccountNotFound
	}

	account, err := s.GetAccount(userID, id)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "updated", UserID: userID, Payload: account})
	return account, nil
}

// DeleteAccount removes the account unconditionally. Transactions and
// transfers that reference it are left in place as dangling references.
func (s *AccountService) DeleteAccount(userID int64, id string) error {
	res, err := s.db.Exec(`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting account %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrAccountNotFound
	}

	logger.L.Info("Account deleted", "userID", userID, "accountID", id)
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "deleted", UserID: userID, Payload: map[string]string{"id": id}})
	return nil
}
