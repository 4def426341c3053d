package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	syncer "github.com/username/fintrack/backend/src/sync"
)

const dateLayout = "2006-01-02"

// NewTransactionInput carries the caller-supplied fields for creating or
// replacing a transaction. Category and description are taken as given;
// their existence in the taxonomy is checked at the UI boundary and is not
// re-validated here, so historical transactions survive taxonomy edits.
type NewTransactionInput struct {
	Type        models.TransactionType
	Date        string
	Category    string
	Description string
	Amount      decimal.Decimal
	AccountID   string
}

// NewTransferInput carries the caller-supplied fields for a transfer.
type NewTransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Date          string
	Note          string
}

// LedgerService applies transaction and transfer mutations as atomic units.
// Every operation runs inside a single SQL transaction with all reads issued
// before any write, so a balance is never computed from a stale read and a
// failure never leaves a partial effect. It is the sole writer of
// transaction-driven balance changes.
type LedgerService struct {
	db          *sql.DB
	hub         *syncer.Hub
	reportCache *cache.Cache
}

func NewLedgerService(db *sql.DB, hub *syncer.Hub, reportCache *cache.Cache) *LedgerService {
	return &LedgerService{db: db, hub: hub, reportCache: reportCache}
}

func validateTransactionInput(input NewTransactionInput) error {
	if !input.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", input.Type)
	}
	if !input.Amount.IsPositive() {
		return models.ErrInvalidAmount
	}
	if _, err := time.Parse(dateLayout, input.Date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", input.Date, err)
	}
	return nil
}

// readAccountBalance reads one account's balance inside the unit. Returns
// models.ErrAccountNotFound when the account does not resolve.
func readAccountBalance(dbTx *sql.Tx, userID int64, accountID string) (decimal.Decimal, error) {
	var balanceStr string
	err := dbTx.QueryRow(`SELECT balance FROM accounts WHERE id = ? AND user_id = ?`,
		accountID, userID).Scan(&balanceStr)
	if err == sql.ErrNoRows {
		return decimal.Zero, models.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("error reading account %s: %w", accountID, err)
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt balance %q for account %s: %w", balanceStr, accountID, err)
	}
	return balance, nil
}

func writeAccountBalance(dbTx *sql.Tx, userID int64, accountID string, balance decimal.Decimal) error {
	_, err := dbTx.Exec(`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		balance.String(), time.Now(), accountID, userID)
	if err != nil {
		return fmt.Errorf("error writing balance for account %s: %w", accountID, err)
	}
	return nil
}

func readTransaction(dbTx *sql.Tx, userID int64, id string) (*models.Transaction, error) {
	var t models.Transaction
	var amountStr string
	err := dbTx.QueryRow(`
		SELECT id, user_id, type, date, category, description, amount, account_id, created_at
		FROM transactions
		WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&t.ID, &t.UserID, &t.Type, &t.Date, &t.Category, &t.Description, &amountStr, &t.AccountID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading transaction %s: %w", id, err)
	}
	t.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q for transaction %s: %w", amountStr, id, err)
	}
	return &t, nil
}

// AddTransaction records a transaction and applies its signed effect to the
// referenced account in one atomic unit.
func (s *LedgerService) AddTransaction(userID int64, input NewTransactionInput) (*models.Transaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning ledger unit: %w", err)
	}
	defer dbTx.Rollback()

	balance, err := readAccountBalance(dbTx, userID, input.AccountID)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        input.Type,
		Date:        input.Date,
		Category:    input.Category,
		Description: input.Description,
		Amount:      input.Amount,
		AccountID:   input.AccountID,
		CreatedAt:   time.Now(),
	}

	if err := writeAccountBalance(dbTx, userID, input.AccountID, balance.Add(transaction.SignedEffect())); err != nil {
		return nil, err
	}
	_, err = dbTx.Exec(`
		INSERT INTO transactions (id, user_id, type, date, category, description, amount, account_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transaction.ID, transaction.UserID, transaction.Type, transaction.Date, transaction.Category,
		transaction.Description, transaction.Amount.String(), transaction.AccountID, transaction.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing ledger unit: %w", err)
	}

	s.afterMutation(userID)
	logger.L.Info("Transaction added", "userID", userID, "transactionID", transaction.ID,
		"type", transaction.Type, "amount", transaction.Amount.String())
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionTransactions, Action: "created", UserID: userID, Payload: transaction})
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "updated", UserID: userID, Payload: map[string]string{"id": input.AccountID}})
	return transaction, nil
}

// DeleteTransaction removes a transaction and reverts its effect on its
// account. If the account has since been deleted the balance revert is
// skipped and the delete proceeds (tolerated orphan).
func (s *LedgerService) DeleteTransaction(userID int64, id string) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning ledger unit: %w", err)
	}
	defer dbTx.Rollback()

	transaction, err := readTransaction(dbTx, userID, id)
	if err != nil {
		return err
	}

	balance, err := readAccountBalance(dbTx, userID, transaction.AccountID)
	accountExists := true
	if errors.Is(err, models.ErrAccountNotFound) {
		accountExists = false
	} else if err != nil {
		return err
	}

	if accountExists {
		if err := writeAccountBalance(dbTx, userID, transaction.AccountID, balance.Sub(transaction.SignedEffect())); err != nil {
			return err
		}
	}
	if _, err := dbTx.Exec(`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("error deleting transaction %s: %w", id, err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing ledger unit: %w", err)
	}

	s.afterMutation(userID)
	logger.L.Info("Transaction deleted", "userID", userID, "transactionID", id, "accountExisted", accountExists)
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionTransactions, Action: "deleted", UserID: userID, Payload: map[string]string{"id": id}})
	if accountExists {
		s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "updated", UserID: userID, Payload: map[string]string{"id": transaction.AccountID}})
	}
	return nil
}

// UpdateTransaction replaces a transaction, reverting the old effect and
// applying the new one, possibly against a different account. All reads
// happen before any write so no computed value depends on a write issued
// earlier in the same unit.
func (s *LedgerService) UpdateTransaction(userID int64, id string, input NewTransactionInput) (*models.Transaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning ledger unit: %w", err)
	}
	defer dbTx.Rollback()

	existing, err := readTransaction(dbTx, userID, id)
	if err != nil {
		return nil, err
	}

	originalBalance, err := readAccountBalance(dbTx, userID, existing.AccountID)
	if err != nil {
		return nil, err
	}

	accountChanged := input.AccountID != existing.AccountID
	var newAccountBalance decimal.Decimal
	if accountChanged {
		newAccountBalance, err = readAccountBalance(dbTx, userID, input.AccountID)
		if err != nil {
			return nil, err
		}
	}

	updated := &models.Transaction{
		ID:          existing.ID,
		UserID:      userID,
		Type:        input.Type,
		Date:        input.Date,
		Category:    input.Category,
		Description: input.Description,
		Amount:      input.Amount,
		AccountID:   input.AccountID,
		CreatedAt:   existing.CreatedAt,
	}

	balanceAfterRevert := originalBalance.Sub(existing.SignedEffect())
	if accountChanged {
		if err := writeAccountBalance(dbTx, userID, existing.AccountID, balanceAfterRevert); err != nil {
			return nil, err
		}
		if err := writeAccountBalance(dbTx, userID, input.AccountID, newAccountBalance.Add(updated.SignedEffect())); err != nil {
			return nil, err
		}
	} else {
		if err := writeAccountBalance(dbTx, userID, existing.AccountID, balanceAfterRevert.Add(updated.SignedEffect())); err != nil {
			return nil, err
		}
	}

	_, err = dbTx.Exec(`
		UPDATE transactions
		SET type = ?, date = ?, category = ?, description = ?, amount = ?, account_id = ?
		WHERE id = ? AND user_id = ?`,
		updated.Type, updated.Date, updated.Category, updated.Description,
		updated.Amount.String(), updated.AccountID, id, userID)
	if err != nil {
		return nil, fmt.Errorf("error updating transaction %s: %w", id, err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing ledger unit: %w", err)
	}

	s.afterMutation(userID)
	logger.L.Info("Transaction updated", "userID", userID, "transactionID", id, "accountChanged", accountChanged)
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionTransactions, Action: "updated", UserID: userID, Payload: updated})
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "updated", UserID: userID, Payload: map[string]string{"id": existing.AccountID}})
	if accountChanged {
		s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "updated", UserID: userID, Payload: map[string]string{"id": input.AccountID}})
	}
	return updated, nil
}

// transferDeltas returns the balance deltas for the source and destination
// accounts. Same-side transfers move the amount; cross-type transfers follow
// liability semantics: paying an asset into a liability reduces the debt,
// drawing from a liability into an asset grows the debt.
func transferDeltas(fromType, toType models.AccountType, amount decimal.Decimal) (fromDelta, toDelta decimal.Decimal) {
	fromDelta = amount.Neg()
	toDelta = amount
	if fromType == models.AccountAsset && toType == models.AccountLiability {
		toDelta = amount.Neg()
	}
	if fromType == models.AccountLiability && toType == models.AccountAsset {
		fromDelta = amount
	}
	return fromDelta, toDelta
}

// AddTransfer moves an amount between two accounts in one atomic unit.
func (s *LedgerService) AddTransfer(userID int64, input NewTransferInput) (*models.Transfer, error) {
	if !input.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if input.FromAccountID == input.ToAccountID {
		return nil, models.ErrSameAccount
	}
	if _, err := time.Parse(dateLayout, input.Date); err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", input.Date, err)
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning ledger unit: %w", err)
	}
	defer dbTx.Rollback()

	var fromType, toType models.AccountType
	var fromBalanceStr, toBalanceStr string
	err = dbTx.QueryRow(`SELECT type, balance FROM accounts WHERE id = ? AND user_id = ?`,
		input.FromAccountID, userID).Scan(&fromType, &fromBalanceStr)
	if err == sql.ErrNoRows {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading account %s: %w", input.FromAccountID, err)
	}
	err = dbTx.QueryRow(`SELECT type, balance FROM accounts WHERE id = ? AND user_id = ?`,
		input.ToAccountID, userID).Scan(&toType, &toBalanceStr)
	if err == sql.ErrNoRows {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading account %s: %w", input.ToAccountID, err)
	}

	fromBalance, err := decimal.NewFromString(fromBalanceStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for account %s: %w", input.FromAccountID, err)
	}
	toBalance, err := decimal.NewFromString(toBalanceStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for account %s: %w", input.ToAccountID, err)
	}

	fromDelta, toDelta := transferDeltas(fromType, toType, input.Amount)

	transfer := &models.Transfer{
		ID:            uuid.NewString(),
		UserID:        userID,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		Date:          input.Date,
		Note:          input.Note,
		CreatedAt:     time.Now(),
	}

	if err := writeAccountBalance(dbTx, userID, input.FromAccountID, fromBalance.Add(fromDelta)); err != nil {
		return nil, err
	}
	if err := writeAccountBalance(dbTx, userID, input.ToAccountID, toBalance.Add(toDelta)); err != nil {
		return nil, err
	}
	_, err = dbTx.Exec(`
		INSERT INTO transfers (id, user_id, from_account_id, to_account_id, amount, date, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		transfer.ID, transfer.UserID, transfer.FromAccountID, transfer.ToAccountID,
		transfer.Amount.String(), transfer.Date, transfer.Note, transfer.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting transfer: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing ledger unit: %w", err)
	}

	s.afterMutation(userID)
	logger.L.Info("Transfer added", "userID", userID, "transferID", transfer.ID,
		"from", transfer.FromAccountID, "to", transfer.ToAccountID, "amount", transfer.Amount.String())
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionTransfers, Action: "created", UserID: userID, Payload: transfer})
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "updated", UserID: userID, Payload: map[string]string{"id": input.FromAccountID}})
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionAccounts, Action: "updated", UserID: userID, Payload: map[string]string{"id": input.ToAccountID}})
	return transfer, nil
}

// TransactionFilter narrows ListTransactions. Zero values mean no filter.
type TransactionFilter struct {
	Type     models.TransactionType
	Category string
	Month    string // YYYY-MM
}

// ListTransactions returns the user's transactions, date descending like the
// source app's list view.
func (s *LedgerService) ListTransactions(userID int64, filter TransactionFilter) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, type, date, category, description, amount, account_id, created_at
		FROM transactions
		WHERE user_id = ?`
	args := []interface{}{userID}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Month != "" {
		query += ` AND date LIKE ?`
		args = append(args, filter.Month+"%")
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var amountStr string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Date, &t.Category, &t.Description,
			&amountStr, &t.AccountID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		t.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q for transaction %s: %w", amountStr, t.ID, err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// ListTransfers returns the user's transfers, newest first.
func (s *LedgerService) ListTransfers(userID int64) ([]models.Transfer, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, from_account_id, to_account_id, amount, date, note, created_at
		FROM transfers
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying transfers for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		var amountStr string
		if err := rows.Scan(&t.ID, &t.UserID, &t.FromAccountID, &t.ToAccountID,
			&amountStr, &t.Date, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning transfer: %w", err)
		}
		t.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q for transfer %s: %w", amountStr, t.ID, err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transfers: %w", err)
	}
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	return transfers, nil
}

// afterMutation drops the user's cached projections so the next report read
// recomputes from the committed state.
func (s *LedgerService) afterMutation(userID int64) {
	if s.reportCache == nil {
		return
	}
	InvalidateReportCache(s.reportCache, userID)
}
