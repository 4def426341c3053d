package services

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/username/fintrack/backend/src/models"
)

func TestGetTaxonomySeedsDefaults(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	taxonomy, err := taxonomies.GetTaxonomy(testUserID)
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultTaxonomy().Categories, taxonomy.Categories)
	assert.Equal(t, []string{"早餐", "午餐", "晚餐", "飲料", "零食"}, taxonomy.Items[models.TypeExpense]["餐飲"])

	// Second read returns the persisted document, not a fresh seed.
	again, err := taxonomies.GetTaxonomy(testUserID)
	assert.NoError(t, err)
	assert.Equal(t, taxonomy.Categories, again.Categories)
}

func TestAddCategory(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	taxonomy, err := taxonomies.AddCategory(testUserID, models.TypeExpense, "醫療")
	assert.NoError(t, err)

	categories := taxonomy.Categories[models.TypeExpense]
	assert.Equal(t, "醫療", categories[len(categories)-1])

	items, ok := taxonomy.Items[models.TypeExpense]["醫療"]
	assert.True(t, ok)
	assert.Equal(t, 0, len(items))
}

func TestAddCategoryRejectsDuplicate(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	_, err := taxonomies.AddCategory(testUserID, models.TypeExpense, "餐飲")
	assert.IsError(t, err, models.ErrDuplicateCategory)
}

func TestAddCategoryRejectsEmptyName(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	for _, name := range []string{"", "   "} {
		_, err := taxonomies.AddCategory(testUserID, models.TypeIncome, name)
		assert.IsError(t, err, models.ErrEmptyName)
	}
}

func TestAddCategorySameNameAcrossTypes(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	// Category names only need to be unique within their own type.
	_, err := taxonomies.AddCategory(testUserID, models.TypeIncome, "餐飲")
	assert.NoError(t, err)
}

func TestAddItem(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	taxonomy, err := taxonomies.AddItem(testUserID, models.TypeExpense, "交通", "計程車")
	assert.NoError(t, err)

	items := taxonomy.Items[models.TypeExpense]["交通"]
	assert.Equal(t, "計程車", items[len(items)-1])

	// Persisted across reads.
	reread, err := taxonomies.GetTaxonomy(testUserID)
	assert.NoError(t, err)
	assert.Equal(t, items, reread.Items[models.TypeExpense]["交通"])
}

func TestAddItemRejectsUnknownCategory(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	_, err := taxonomies.AddItem(testUserID, models.TypeExpense, "不存在", "x")
	assert.IsError(t, err, models.ErrUnknownCategory)
}

func TestAddItemRejectsDuplicate(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	_, err := taxonomies.AddItem(testUserID, models.TypeExpense, "餐飲", "早餐")
	assert.IsError(t, err, models.ErrDuplicateItem)
}

func TestAddItemUnderNewCategory(t *testing.T) {
	_, _, taxonomies := newTestServices(t)

	_, err := taxonomies.AddCategory(testUserID, models.TypeIncome, "租金")
	assert.NoError(t, err)

	taxonomy, err := taxonomies.AddItem(testUserID, models.TypeIncome, "租金", "車位")
	assert.NoError(t, err)
	assert.Equal(t, []string{"車位"}, taxonomy.Items[models.TypeIncome]["租金"])
}
