// Package storage provides the collaborator adapters behind the analysis
// ports: a SQLite-backed store for real data and an in-memory store for
// tests and demos. The analytics core only reads transactions, categories
// and goals; alert history is its single, append-only write.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finsight/internal/core"
)

// SQLiteStore implements the analysis ports on top of a SQLite database
// shared with the rest of the system.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListTransactions returns the owner's transactions of one kind in
// [from, to), ordered by date ascending, with category and account display
// names resolved.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID int64, kind core.TransactionKind, from, to time.Time) ([]core.Transaction, error) {
	const query = `
		SELECT t.id, t.kind, t.description, t.amount, t.date,
		       IFNULL(t.category_id, ''), IFNULL(c.name, ''),
		       t.account_id, IFNULL(a.name, ''),
		       t.user_id, t.created_at, IFNULL(t.updated_at, t.created_at)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = ? AND t.kind = ? AND t.date >= ? AND t.date < ?
		ORDER BY t.date ASC, t.id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, string(kind), from, to)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var kindStr, amountStr string
		if err := rows.Scan(
			&tx.ID, &kindStr, &tx.Description, &amountStr, &tx.Date,
			&tx.CategoryID, &tx.CategoryName,
			&tx.AccountID, &tx.AccountName,
			&tx.UserID, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = core.TransactionKind(kindStr)
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q for transaction %d: %w", amountStr, tx.ID, err)
		}
		tx.Amount = amount
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// ListCategories returns all categories of the given type.
func (s *SQLiteStore) ListCategories(ctx context.Context, typ core.CategoryType) ([]core.Category, error) {
	const query = `
		SELECT id, name, type, IFNULL(parent_id, ''), IFNULL(code, '')
		FROM categories
		WHERE type = ?
		ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, string(typ))
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var cat core.Category
		var typStr string
		if err := rows.Scan(&cat.ID, &cat.Name, &typStr, &cat.ParentID, &cat.Code); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.Type = core.CategoryType(typStr)
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// ListGoals returns the owner's category goals with category names resolved.
func (s *SQLiteStore) ListGoals(ctx context.Context, userID int64) ([]core.CategoryGoal, error) {
	const query = `
		SELECT g.id, g.user_id, g.category_id, IFNULL(c.name, ''), g.target_amount
		FROM category_goals g
		LEFT JOIN categories c ON c.id = g.category_id
		WHERE g.user_id = ?
		ORDER BY g.id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []core.CategoryGoal
	for rows.Next() {
		var goal core.CategoryGoal
		var targetStr string
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.CategoryID, &goal.CategoryName, &targetStr); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		target, err := decimal.NewFromString(targetStr)
		if err != nil {
			return nil, fmt.Errorf("parse target amount %q for goal %d: %w", targetStr, goal.ID, err)
		}
		goal.TargetAmount = target
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// RecordAlert appends one alert-history row. History rows are never updated
// or deleted here.
func (s *SQLiteStore) RecordAlert(ctx context.Context, userID int64, alert core.Alert) error {
	const query = `
		INSERT INTO alert_history (user_id, level, title, message, created_at)
		VALUES (?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query,
		userID, string(alert.Level), alert.Title, alert.Message, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert alert history: %w", err)
	}
	return nil
}
