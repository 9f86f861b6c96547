package analysis

import (
	"context"
	"time"

	"finsight/internal/core"
)

// Ports to the collaborators that own the data. The engines only ever read
// transactions and categories; alert history is the single write side effect.
type (
	// TransactionSource returns transactions of one kind for one owner, with
	// from inclusive and to exclusive, ordered by date ascending.
	TransactionSource interface {
		ListTransactions(ctx context.Context, userID int64, kind core.TransactionKind, from, to time.Time) ([]core.Transaction, error)
	}

	// CategorySource returns category metadata of the given type.
	CategorySource interface {
		ListCategories(ctx context.Context, typ core.CategoryType) ([]core.Category, error)
	}

	// GoalSource returns the per-category spending goals of one owner.
	GoalSource interface {
		ListGoals(ctx context.Context, userID int64) ([]core.CategoryGoal, error)
	}

	// AlertRecorder appends one alert-history entry. Entries are append-only;
	// the engines never update or delete them.
	AlertRecorder interface {
		RecordAlert(ctx context.Context, userID int64, alert core.Alert) error
	}
)
