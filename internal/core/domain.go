// Package core holds the domain types shared by every analysis engine:
// transactions, categories, spending goals and alerts.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

const (
	CategoryIncome   CategoryType = "income"
	CategoryExpense  CategoryType = "expense"
	CategoryTransfer CategoryType = "transfer"
)

const (
	LevelInfo     AlertLevel = "info"
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
)

type (
	TransactionKind string
	CategoryType    string
	AlertLevel      string

	// Transaction is a read-only view of a single income or expense record.
	Transaction struct {
		ID           int64
		Kind         TransactionKind
		Description  string
		Amount       decimal.Decimal
		Date         time.Time
		CategoryID   string // empty when uncategorized
		CategoryName string
		AccountID    int64
		AccountName  string
		UserID       int64
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Category is income/expense/transfer taxonomy metadata. ParentID is empty
	// for root categories.
	Category struct {
		ID       string
		Name     string
		Type     CategoryType
		ParentID string
		Code     string // optional fiscal code
	}

	// CategoryGoal is a per-category monthly spending target.
	CategoryGoal struct {
		ID           int64
		UserID       int64
		CategoryID   string
		CategoryName string
		TargetAmount decimal.Decimal
	}

	// Alert is a single leveled finding produced by the alert engine.
	Alert struct {
		Level   AlertLevel `json:"level"`
		Title   string     `json:"title"`
		Message string     `json:"message"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrMissingOwner     = errors.New("missing owner")
)

// Accepts reports whether a category of this type may be referenced by a
// transaction of the given kind. Transfer categories accept neither.
func (t CategoryType) Accepts(k TransactionKind) bool {
	switch t {
	case CategoryIncome:
		return k == KindIncome
	case CategoryExpense:
		return k == KindExpense
	default:
		return false
	}
}

func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.UserID == 0 {
		return ErrMissingOwner
	}
	return nil
}

// Categorized reports whether the transaction references a category.
func (t Transaction) Categorized() bool {
	return t.CategoryID != ""
}

// Severity orders alert levels from least to most severe.
func (l AlertLevel) Severity() int {
	switch l {
	case LevelCritical:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}
