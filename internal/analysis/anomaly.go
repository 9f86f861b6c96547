package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finsight/internal/core"
	"finsight/internal/stats"
)

// Anomaly detection policies. PolicyPerCategory is the primary policy: each
// category is judged against its own history with a z-score over a trailing
// window of recent transactions. PolicyGlobal is the coarser alternate some
// report surfaces use: one mean and deviation across all records combined,
// flagging everything above mean + threshold·stddev.
const (
	PolicyPerCategory AnomalyPolicy = "per-category"
	PolicyGlobal      AnomalyPolicy = "global"
)

type AnomalyPolicy string

func (p AnomalyPolicy) Valid() bool {
	return p == PolicyPerCategory || p == PolicyGlobal
}

// AnomalyConfig carries the detection thresholds. Zero values fall back to
// the defaults documented on each field.
type AnomalyConfig struct {
	Threshold    float64       // stddev multiplier, default 2.0
	MinHistory   int           // minimum records per category, default 5
	RecentWindow int           // trailing transactions inspected, default 3
	Policy       AnomalyPolicy // default PolicyPerCategory
	Now          func() time.Time
}

func (c AnomalyConfig) withDefaults() AnomalyConfig {
	if c.Threshold <= 0 {
		c.Threshold = 2.0
	}
	if c.MinHistory <= 0 {
		c.MinHistory = 5
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = 3
	}
	if !c.Policy.Valid() {
		c.Policy = PolicyPerCategory
	}
	c.Now = defaultNow(c.Now)
	return c
}

// Anomaly is one transaction flagged as deviating from its historical pattern.
type Anomaly struct {
	ID           int64                `json:"id"`
	Kind         core.TransactionKind `json:"type"`
	Description  string               `json:"description"`
	Amount       float64              `json:"amount"`
	Date         time.Time            `json:"date"`
	CategoryName *string              `json:"category_name"`
	AccountName  *string              `json:"account_name"`
}

// AnomalyDetector flags transactions that deviate from their historical
// distribution.
type AnomalyDetector struct {
	src TransactionSource
	cfg AnomalyConfig
}

func NewAnomalyDetector(src TransactionSource, cfg AnomalyConfig) *AnomalyDetector {
	return &AnomalyDetector{src: src, cfg: cfg.withDefaults()}
}

// Detect runs detection over both incomes and expenses and returns the
// combined list.
func (d *AnomalyDetector) Detect(ctx context.Context, userID int64) ([]Anomaly, error) {
	expenses, err := d.DetectKind(ctx, userID, core.KindExpense)
	if err != nil {
		return nil, err
	}
	incomes, err := d.DetectKind(ctx, userID, core.KindIncome)
	if err != nil {
		return nil, err
	}
	return append(expenses, incomes...), nil
}

// DetectKind runs detection over the full history of one transaction kind.
func (d *AnomalyDetector) DetectKind(ctx context.Context, userID int64, kind core.TransactionKind) ([]Anomaly, error) {
	txs, err := d.src.ListTransactions(ctx, userID, kind, beginningOfTime, d.cfg.Now())
	if err != nil {
		return nil, fmt.Errorf("list %s transactions: %w", kind, err)
	}
	if d.cfg.Policy == PolicyGlobal {
		return d.detectGlobal(txs), nil
	}
	return d.detectPerCategory(txs), nil
}

// detectPerCategory groups history by category and flags recent transactions
// whose |z-score| exceeds the threshold. Categories with fewer than
// MinHistory records, or with zero variance, produce no anomalies.
func (d *AnomalyDetector) detectPerCategory(txs []core.Transaction) []Anomaly {
	byCategory := make(map[string][]core.Transaction)
	for _, tx := range txs {
		byCategory[tx.CategoryID] = append(byCategory[tx.CategoryID], tx)
	}

	categoryIDs := make([]string, 0, len(byCategory))
	for id := range byCategory {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Strings(categoryIDs)

	var anomalies []Anomaly
	for _, id := range categoryIDs {
		records := byCategory[id]
		if len(records) < d.cfg.MinHistory {
			continue
		}
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Date.Before(records[j].Date)
		})

		values := amounts(records)
		mean := stats.Mean(values)
		stddev := stats.StdDev(values)
		if stddev == 0 {
			continue
		}

		start := len(records) - d.cfg.RecentWindow
		if start < 0 {
			start = 0
		}
		recent := records[start:]
		for _, tx := range recent {
			z := stats.ZScore(tx.Amount.InexactFloat64(), mean, stddev)
			if z > d.cfg.Threshold || z < -d.cfg.Threshold {
				anomalies = append(anomalies, newAnomaly(tx))
			}
		}
	}
	return anomalies
}

// detectGlobal flags every record above mean + threshold·stddev across all
// categories combined.
func (d *AnomalyDetector) detectGlobal(txs []core.Transaction) []Anomaly {
	if len(txs) == 0 {
		return nil
	}
	values := amounts(txs)
	limit := stats.Mean(values) + d.cfg.Threshold*stats.StdDev(values)

	var anomalies []Anomaly
	for _, tx := range txs {
		if tx.Amount.InexactFloat64() > limit {
			anomalies = append(anomalies, newAnomaly(tx))
		}
	}
	return anomalies
}

func newAnomaly(tx core.Transaction) Anomaly {
	a := Anomaly{
		ID:          tx.ID,
		Kind:        tx.Kind,
		Description: tx.Description,
		Amount:      tx.Amount.InexactFloat64(),
		Date:        tx.Date,
	}
	if tx.Categorized() {
		name := tx.CategoryName
		a.CategoryName = &name
	}
	if tx.AccountName != "" {
		name := tx.AccountName
		a.AccountName = &name
	}
	return a
}

func amounts(txs []core.Transaction) []float64 {
	values := make([]float64, len(txs))
	for i, tx := range txs {
		values[i] = tx.Amount.InexactFloat64()
	}
	return values
}
