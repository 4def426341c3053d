package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

type accountRequest struct {
	Name     string             `json:"name"`
	Type     models.AccountType `json:"type"`
	Category string             `json:"category"`
	Balance  decimal.Decimal    `json:"balance"`
}

func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	accounts, err := h.accountService.ListAccounts(userID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.CreateAccount(userID, req.Name, req.Type, req.Category, req.Balance)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		utils.SendJSONError(w, "Account id required", http.StatusBadRequest)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.UpdateAccount(userID, id, req.Name, req.Type, req.Category, req.Balance)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		utils.SendJSONError(w, "Account id required", http.StatusBadRequest)
		return
	}

	if err := h.accountService.DeleteAccount(userID, id); err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
