package models

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestSignedEffect(t *testing.T) {
	amount := decimal.RequireFromString("42.50")

	income := Transaction{Type: TypeIncome, Amount: amount}
	assert.Equal(t, "42.5", income.SignedEffect().String())

	expense := Transaction{Type: TypeExpense, Amount: amount}
	assert.Equal(t, "-42.5", expense.SignedEffect().String())
}

func TestTransactionTypeValid(t *testing.T) {
	assert.True(t, TypeExpense.Valid())
	assert.True(t, TypeIncome.Valid())
	assert.False(t, TransactionType("transfer").Valid())
	assert.False(t, TransactionType("").Valid())
}

func TestValidAccountCategory(t *testing.T) {
	assert.True(t, ValidAccountCategory(AccountAsset, "bank"))
	assert.True(t, ValidAccountCategory(AccountAsset, "eticket"))
	assert.True(t, ValidAccountCategory(AccountLiability, "credit_card"))
	assert.False(t, ValidAccountCategory(AccountAsset, "credit_card"))
	assert.False(t, ValidAccountCategory(AccountLiability, "bank"))
	assert.False(t, ValidAccountCategory(AccountAsset, ""))
}

func TestDefaultTaxonomyConsistent(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	// Every seeded category has an item list, possibly empty.
	for txType, categories := range taxonomy.Categories {
		for _, category := range categories {
			_, ok := taxonomy.Items[txType][category]
			assert.True(t, ok)
		}
	}
}
