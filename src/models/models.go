package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// SignedEffect is the delta a transaction of this type and amount applies to
// its account balance: +amount for income, -amount for expense.
func (t TransactionType) SignedEffect(amount decimal.Decimal) decimal.Decimal {
	if t == TypeIncome {
		return amount
	}
	return amount.Neg()
}

// AccountType partitions accounts into assets and liabilities. The two sides
// carry different transfer sign conventions (see the ledger service).
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
)

// Account categories per type, mirroring the source app's fixed sets.
var accountCategories = map[AccountType][]string{
	AccountAsset:     {"bank", "wallet", "investment", "crypto", "eticket"},
	AccountLiability: {"credit_card", "installment_credit_card", "loan"},
}

// ValidAccountCategory reports whether category is one of the allowed
// categories for the given account type.
func ValidAccountCategory(accountType AccountType, category string) bool {
	for _, c := range accountCategories[accountType] {
		if c == category {
			return true
		}
	}
	return false
}

type Account struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"-"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Category  string          `json:"category"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Transaction struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"-"`
	Type        TransactionType `json:"type"`
	Date        string          `json:"date"` // calendar date, YYYY-MM-DD
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	AccountID   string          `json:"accountId"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SignedEffect is the delta this transaction applies to its account balance.
func (t *Transaction) SignedEffect() decimal.Decimal {
	return t.Type.SignedEffect(t.Amount)
}

type Transfer struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"-"`
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Note          string          `json:"note"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Taxonomy is the user-defined category/item vocabulary. It is persisted as
// one whole document per user; writers replace the full document.
type Taxonomy struct {
	Categories map[TransactionType][]string            `json:"categories"`
	Items      map[TransactionType]map[string][]string `json:"items"`
}

// DefaultTaxonomy returns the vocabulary a fresh user starts with, matching
// the source app's initial state.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Categories: map[TransactionType][]string{
			TypeExpense: {"餐飲", "交通", "購物", "娛樂", "居家", "其他支出"},
			TypeIncome:  {"薪資", "投資", "副業", "獎金", "其他收入"},
		},
		Items: map[TransactionType]map[string][]string{
			TypeExpense: {
				"餐飲": {"早餐", "午餐", "晚餐", "飲料", "零食"},
				"交通": {"捷運/公車"},
				"購物": {},
				"娛樂": {},
				"居家": {},
				"其他支出": {},
			},
			TypeIncome: {
				"薪資": {"月薪"},
				"投資": {"股息"},
				"副業": {},
				"獎金": {},
				"其他收入": {},
			},
		},
	}
}
