package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// CategoryKind says which side of the ledger a category belongs to.
	CategoryKind string

	// TransactionKind is the variant tag of a transaction.
	TransactionKind string

	// Date is a calendar date without time of day, serialized as
	// ISO-8601 (YYYY-MM-DD).
	Date struct {
		time.Time
	}

	// Category labels income and expense transactions. Deleting a
	// category does not cascade; transactions keep the dangling id and
	// aggregate as uncategorized.
	Category struct {
		ID    string       `json:"id"`
		Name  string       `json:"name"`
		Color string       `json:"color"`
		Kind  CategoryKind `json:"type"`
	}

	// Investment is a named savings goal. Its current value is never
	// stored: it is always derived from the transaction log. Stored
	// currentValue fields found in old snapshots are dropped on load.
	Investment struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
		GoalValue   Money  `json:"goalValue"`
	}

	// Transaction is one ledger entry. The Kind tag plus the reference
	// fields form a variant; Validate enforces which fields each variant
	// may carry, and the constructors below only build valid shapes.
	Transaction struct {
		ID           string          `json:"id"`
		Date         Date            `json:"date"`
		Description  string          `json:"description"`
		Value        Money           `json:"value"`
		Kind         TransactionKind `json:"type"`
		CategoryID   string          `json:"categoryId,omitempty"`
		InvestmentID string          `json:"investmentId,omitempty"`
		Withdrawal   bool            `json:"isWithdrawal,omitempty"`
	}
)

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"

	KindIncome     TransactionKind = "income"
	KindExpense    TransactionKind = "expense"
	KindInvestment TransactionKind = "investment"
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidValue      = errors.New("value must be a positive amount")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyName         = errors.New("empty name")
	ErrMissingCategory   = errors.New("missing category reference")
	ErrMissingInvestment = errors.New("missing investment reference")
	ErrStrayCategory     = errors.New("category reference not allowed for this kind")
	ErrStrayInvestment   = errors.New("investment reference not allowed for this kind")
	ErrStrayWithdrawal   = errors.New("withdrawal flag not allowed for this kind")
	ErrInvalidGoalValue  = errors.New("goal value must be positive")
)

// NewDate builds a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (k CategoryKind) Valid() bool {
	return k == CategoryIncome || k == CategoryExpense
}

func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense || k == KindInvestment
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (i Investment) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if !i.GoalValue.IsPositive() {
		return ErrInvalidGoalValue
	}
	return nil
}

// Validate enforces the per-variant field rules:
//
//	income:                categoryId set, no investmentId, no withdrawal flag
//	expense (regular):     categoryId set, no investmentId
//	expense (withdrawal):  investmentId set, no categoryId
//	investment:            investmentId set, no categoryId, description optional
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Value.IsPositive() {
		return ErrInvalidValue
	}
	switch t.Kind {
	case KindIncome:
		if t.Withdrawal {
			return ErrStrayWithdrawal
		}
		if t.CategoryID == "" {
			return ErrMissingCategory
		}
		if t.InvestmentID != "" {
			return ErrStrayInvestment
		}
	case KindExpense:
		if t.Withdrawal {
			if t.InvestmentID == "" {
				return ErrMissingInvestment
			}
			if t.CategoryID != "" {
				return ErrStrayCategory
			}
		} else {
			if t.CategoryID == "" {
				return ErrMissingCategory
			}
			if t.InvestmentID != "" {
				return ErrStrayInvestment
			}
		}
	case KindInvestment:
		if t.Withdrawal {
			return ErrStrayWithdrawal
		}
		if t.InvestmentID == "" {
			return ErrMissingInvestment
		}
		if t.CategoryID != "" {
			return ErrStrayCategory
		}
	default:
		return ErrInvalidKind
	}
	if t.Kind != KindInvestment && strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// NewIncome builds an income transaction draft.
func NewIncome(date Date, description string, value Money, categoryID string) Draft {
	return Draft{Date: date, Description: description, Value: value, Kind: KindIncome, CategoryID: categoryID}
}

// NewExpense builds a regular expense draft, charged against the balance.
func NewExpense(date Date, description string, value Money, categoryID string) Draft {
	return Draft{Date: date, Description: description, Value: value, Kind: KindExpense, CategoryID: categoryID}
}

// NewWithdrawal builds an expense draft that draws down a goal instead of
// the general balance.
func NewWithdrawal(date Date, description string, value Money, investmentID string) Draft {
	return Draft{Date: date, Description: description, Value: value, Kind: KindExpense, InvestmentID: investmentID, Withdrawal: true}
}

// NewInvestmentDeposit builds a contribution draft toward a goal.
func NewInvestmentDeposit(date Date, description string, value Money, investmentID string) Draft {
	return Draft{Date: date, Description: description, Value: value, Kind: KindInvestment, InvestmentID: investmentID}
}

// DefaultCategories is the seed set a fresh ledger starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat_1", Name: "Salário", Color: "#10B981", Kind: CategoryIncome},
		{ID: "cat_2", Name: "Freelance", Color: "#34D399", Kind: CategoryIncome},
		{ID: "cat_3", Name: "Alimentação", Color: "#EF4444", Kind: CategoryExpense},
		{ID: "cat_4", Name: "Transporte", Color: "#F59E0B", Kind: CategoryExpense},
		{ID: "cat_5", Name: "Moradia", Color: "#6366F1", Kind: CategoryExpense},
		{ID: "cat_6", Name: "Lazer", Color: "#EC4899", Kind: CategoryExpense},
		{ID: "cat_7", Name: "Outras Despesas", Color: "#9CA3AF", Kind: CategoryExpense},
	}
}
