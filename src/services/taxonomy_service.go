package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	syncer "github.com/username/fintrack/backend/src/sync"
)

// TaxonomyService owns the user-defined category/item vocabulary. The
// taxonomy is persisted as one whole document per user and every write
// replaces the full document: concurrent edits from two sessions are last
// write wins, which is acceptable for the single-user scope.
type TaxonomyService struct {
	db  *sql.DB
	hub *syncer.Hub
}

func NewTaxonomyService(db *sql.DB, hub *syncer.Hub) *TaxonomyService {
	return &TaxonomyService{db: db, hub: hub}
}

// GetTaxonomy loads the user's taxonomy document, seeding the default
// vocabulary on first read.
func (s *TaxonomyService) GetTaxonomy(userID int64) (*models.Taxonomy, error) {
	var document string
	err := s.db.QueryRow(`SELECT document FROM user_data WHERE user_id = ?`, userID).Scan(&document)
	if err == sql.ErrNoRows {
		taxonomy := models.DefaultTaxonomy()
		if err := s.saveTaxonomy(userID, taxonomy); err != nil {
			return nil, err
		}
		logger.L.Info("Seeded default taxonomy", "userID", userID)
		return taxonomy, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying taxonomy for userID %d: %w", userID, err)
	}

	var taxonomy models.Taxonomy
	if err := json.Unmarshal([]byte(document), &taxonomy); err != nil {
		return nil, fmt.Errorf("corrupt taxonomy document for userID %d: %w", userID, err)
	}
	return &taxonomy, nil
}

func (s *TaxonomyService) saveTaxonomy(userID int64, taxonomy *models.Taxonomy) error {
	document, err := json.Marshal(taxonomy)
	if err != nil {
		return fmt.Errorf("error marshaling taxonomy: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO user_data (user_id, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		userID, string(document), time.Now())
	if err != nil {
		return fmt.Errorf("error saving taxonomy: %w", err)
	}
	return nil
}

// AddCategory appends a category for the given transaction type, preserving
// insertion order, and initializes its empty item list.
func (s *TaxonomyService) AddCategory(userID int64, txType models.TransactionType, name string) (*models.Taxonomy, error) {
	if !txType.Valid() {
		return nil, fmt.Errorf("invalid transaction type %q", txType)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrEmptyName
	}

	taxonomy, err := s.GetTaxonomy(userID)
	if err != nil {
		return nil, err
	}

	for _, existing := range taxonomy.Categories[txType] {
		if existing == name {
			return nil, models.ErrDuplicateCategory
		}
	}

	taxonomy.Categories[txType] = append(taxonomy.Categories[txType], name)
	if taxonomy.Items[txType] == nil {
		taxonomy.Items[txType] = make(map[string][]string)
	}
	taxonomy.Items[txType][name] = []string{}

	if err := s.saveTaxonomy(userID, taxonomy); err != nil {
		return nil, err
	}

	logger.L.Info("Category added", "userID", userID, "type", txType, "category", name)
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionUserData, Action: "updated", UserID: userID, Payload: taxonomy})
	return taxonomy, nil
}

// AddItem appends an item under an existing category.
func (s *TaxonomyService) AddItem(userID int64, txType models.TransactionType, category, name string) (*models.Taxonomy, error) {
	if !txType.Valid() {
		return nil, fmt.Errorf("invalid transaction type %q", txType)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrEmptyName
	}

	taxonomy, err := s.GetTaxonomy(userID)
	if err != nil {
		return nil, err
	}

	items, ok := taxonomy.Items[txType][category]
	if !ok {
		return nil, models.ErrUnknownCategory
	}
	for _, existing := range items {
		if existing == name {
			return nil, models.ErrDuplicateItem
		}
	}

	taxonomy.Items[txType][category] = append(items, name)

	if err := s.saveTaxonomy(userID, taxonomy); err != nil {
		return nil, err
	}

	logger.L.Info("Item added", "userID", userID, "type", txType, "category", category, "item", name)
	s.hub.Publish(syncer.Event{Collection: syncer.CollectionUserData, Action: "updated", UserID: userID, Payload: taxonomy})
	return taxonomy, nil
}
