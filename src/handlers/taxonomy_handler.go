package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type TaxonomyHandler struct {
	taxonomyService *services.TaxonomyService
}

func NewTaxonomyHandler(taxonomyService *services.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService}
}

func (h *TaxonomyHandler) HandleGetTaxonomy(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	taxonomy, err := h.taxonomyService.GetTaxonomy(userID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, taxonomy)
}

func (h *TaxonomyHandler) HandleAddCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Type models.TransactionType `json:"type"`
		Name string                 `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Type.Valid() {
		utils.SendJSONError(w, "type must be expense or income", http.StatusBadRequest)
		return
	}

	taxonomy, err := h.taxonomyService.AddCategory(userID, req.Type, req.Name)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, taxonomy)
}

func (h *TaxonomyHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Type     models.TransactionType `json:"type"`
		Category string                 `json:"category"`
		Name     string                 `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Type.Valid() {
		utils.SendJSONError(w, "type must be expense or income", http.StatusBadRequest)
		return
	}

	taxonomy, err := h.taxonomyService.AddItem(userID, req.Type, req.Category, req.Name)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, taxonomy)
}
