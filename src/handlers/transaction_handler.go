package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

// Selection is a tagged choice at the API boundary: either an existing
// vocabulary entry or a request to create a new one inline. A bare JSON
// string is shorthand for the existing case.
type Selection struct {
	Existing string `json:"existing,omitempty"`
	New      string `json:"new,omitempty"`
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.Existing = plain
		s.New = ""
		return nil
	}
	type selectionAlias Selection
	var alias selectionAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*s = Selection(alias)
	return nil
}

func (s Selection) validate() error {
	if (s.Existing == "") == (s.New == "") {
		return errors.New("selection must set exactly one of existing or new")
	}
	return nil
}

// value returns the chosen name regardless of variant.
func (s Selection) value() string {
	if s.New != "" {
		return s.New
	}
	return s.Existing
}

type TransactionHandler struct {
	ledgerService   *services.LedgerService
	taxonomyService *services.TaxonomyService
}

func NewTransactionHandler(ledgerService *services.LedgerService, taxonomyService *services.TaxonomyService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService, taxonomyService: taxonomyService}
}

type transactionRequest struct {
	Type        models.TransactionType `json:"type"`
	Date        string                 `json:"date"`
	Category    Selection              `json:"category"`
	Description Selection              `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	AccountID   string                 `json:"accountId"`
}

// resolveSelections materializes any requested-new category/item before the
// ledger unit runs, so the ledger itself never touches the taxonomy.
func (h *TransactionHandler) resolveSelections(userID int64, req *transactionRequest) error {
	if err := req.Category.validate(); err != nil {
		return err
	}
	if err := req.Description.validate(); err != nil {
		return err
	}
	if req.Category.New != "" {
		if _, err := h.taxonomyService.AddCategory(userID, req.Type, req.Category.New); err != nil {
			return fmt.Errorf("adding category %q: %w", req.Category.New, err)
		}
	}
	if req.Description.New != "" {
		if _, err := h.taxonomyService.AddItem(userID, req.Type, req.Category.value(), req.Description.New); err != nil {
			return fmt.Errorf("adding item %q: %w", req.Description.New, err)
		}
	}
	return nil
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	filter := services.TransactionFilter{
		Type:     models.TransactionType(r.URL.Query().Get("type")),
		Category: r.URL.Query().Get("category"),
		Month:    r.URL.Query().Get("month"),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		utils.SendJSONError(w, fmt.Sprintf("invalid transaction type %q", filter.Type), http.StatusBadRequest)
		return
	}

	transactions, err := h.ledgerService.ListTransactions(userID, filter)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.resolveSelections(userID, &req); err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}

	transaction, err := h.ledgerService.AddTransaction(userID, services.NewTransactionInput{
		Type:        req.Type,
		Date:        req.Date,
		Category:    req.Category.value(),
		Description: req.Description.value(),
		Amount:      req.Amount,
		AccountID:   req.AccountID,
	})
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		utils.SendJSONError(w, "Transaction id required", http.StatusBadRequest)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.resolveSelections(userID, &req); err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}

	transaction, err := h.ledgerService.UpdateTransaction(userID, id, services.NewTransactionInput{
		Type:        req.Type,
		Date:        req.Date,
		Category:    req.Category.value(),
		Description: req.Description.value(),
		Amount:      req.Amount,
		AccountID:   req.AccountID,
	})
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		utils.SendJSONError(w, "Transaction id required", http.StatusBadRequest)
		return
	}

	if err := h.ledgerService.DeleteTransaction(userID, id); err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
