// Package ledger is the append-only store of finalized transactions.
// Records are inserted once by the payment flow and only ever read
// afterwards; reporting and invoicing work on copies.
package ledger

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pizzabarbas/pos/internal/domain"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts a finalized transaction. It is the ledger's only
// mutator and is called exactly once per successful dispatch outcome;
// a duplicate id is an error rather than a silent overwrite.
func (s *Store) Append(t *domain.Transaction) error {
	var brand, last4 any
	if t.Card != nil {
		brand = t.Card.Brand
		last4 = t.Card.Last4
	}

	_, err := s.db.Exec(
		`INSERT INTO transactions
		(id, subtotal_cents, tip_cents, total_cents, payment_method,
		 employee_id, created_at, status, card_brand, card_last4)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Subtotal.Cents(), t.Tip.Cents(), t.Total.Cents(),
		string(t.PaymentMethod), t.EmployeeID, t.CreatedAt.Format(time.RFC3339),
		string(t.Status), brand, last4,
	)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// BulkInsert loads seed transactions, skipping ids that already exist.
func (s *Store) BulkInsert(txns []domain.Transaction) (int, error) {
	sqlTx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO transactions
		(id, subtotal_cents, tip_cents, total_cents, payment_method,
		 employee_id, created_at, status, card_brand, card_last4)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range txns {
		t := &txns[i]
		var brand, last4 any
		if t.Card != nil {
			brand = t.Card.Brand
			last4 = t.Card.Last4
		}
		res, err := stmt.Exec(
			t.ID, t.Subtotal.Cents(), t.Tip.Cents(), t.Total.Cents(),
			string(t.PaymentMethod), t.EmployeeID, t.CreatedAt.Format(time.RFC3339),
			string(t.Status), brand, last4,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

func (s *Store) GetByID(id string) (*domain.Transaction, error) {
	rows, err := s.db.Query("SELECT * FROM transactions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	return scanTransaction(rows)
}

type Filter struct {
	Method     string
	EmployeeID string
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// List returns transactions most-recent-first.
func (s *Store) List(f Filter) ([]domain.Transaction, error) {
	where, args := buildWhere(f)

	if f.Limit <= 0 {
		f.Limit = 50
	}
	q := "SELECT * FROM transactions" + where + " ORDER BY created_at DESC LIMIT ?"
	args = append(args, f.Limit)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// Summary aggregates completed sales over a period.
type Summary struct {
	TotalSales        domain.Money `json:"total_sales"`
	TotalTips         domain.Money `json:"total_tips"`
	TotalCollected    domain.Money `json:"total_collected"`
	AverageOrder      domain.Money `json:"average_order"`
	TotalTransactions int          `json:"total_transactions"`
}

// Aggregate is a pure projection over the current ledger contents;
// nothing is cached, so it reflects an append immediately.
func (s *Store) Aggregate(from, to *time.Time) (*Summary, error) {
	where, args := buildWhere(Filter{Status: string(domain.StatusCompleted), From: from, To: to})

	var sum Summary
	var sales, tips sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(subtotal_cents),0), COALESCE(SUM(tip_cents),0)
		 FROM transactions`+where, args...,
	).Scan(&sum.TotalTransactions, &sales, &tips)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	sum.TotalSales = domain.Money(sales.Int64)
	sum.TotalTips = domain.Money(tips.Int64)
	sum.TotalCollected = sum.TotalSales.Add(sum.TotalTips)
	if sum.TotalTransactions > 0 {
		sum.AverageOrder = domain.Money((sales.Int64 + int64(sum.TotalTransactions)/2) / int64(sum.TotalTransactions))
	}
	return &sum, nil
}

// EmployeeSummary is the per-employee slice of Aggregate.
type EmployeeSummary struct {
	EmployeeID string `json:"employee_id"`
	Summary
}

func (s *Store) AggregateByEmployee(from, to *time.Time) ([]EmployeeSummary, error) {
	where, args := buildWhere(Filter{Status: string(domain.StatusCompleted), From: from, To: to})

	rows, err := s.db.Query(
		`SELECT employee_id, COUNT(*), COALESCE(SUM(subtotal_cents),0), COALESCE(SUM(tip_cents),0)
		 FROM transactions`+where+` GROUP BY employee_id ORDER BY employee_id`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate by employee: %w", err)
	}
	defer rows.Close()

	var result []EmployeeSummary
	for rows.Next() {
		var es EmployeeSummary
		var sales, tips int64
		if err := rows.Scan(&es.EmployeeID, &es.TotalTransactions, &sales, &tips); err != nil {
			return nil, err
		}
		es.TotalSales = domain.Money(sales)
		es.TotalTips = domain.Money(tips)
		es.TotalCollected = es.TotalSales.Add(es.TotalTips)
		if es.TotalTransactions > 0 {
			es.AverageOrder = domain.Money((sales + int64(es.TotalTransactions)/2) / int64(es.TotalTransactions))
		}
		result = append(result, es)
	}
	return result, rows.Err()
}

// --- helpers ---

func buildWhere(f Filter) (string, []any) {
	var clauses []string
	var args []any

	if f.Method != "" {
		clauses = append(clauses, "payment_method = ?")
		args = append(args, f.Method)
	}
	if f.EmployeeID != "" {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.From != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, f.To.Format(time.RFC3339))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanTransaction(rows *sql.Rows) (*domain.Transaction, error) {
	var t domain.Transaction
	var subtotal, tip, total int64
	var method, status, createdAt string
	var brandNull, last4Null sql.NullString

	err := rows.Scan(
		&t.ID, &subtotal, &tip, &total, &method,
		&t.EmployeeID, &createdAt, &status, &brandNull, &last4Null,
	)
	if err != nil {
		return nil, err
	}

	t.Subtotal = domain.Money(subtotal)
	t.Tip = domain.Money(tip)
	t.Total = domain.Money(total)
	t.PaymentMethod = domain.PaymentMethod(method)
	t.Status = domain.TransactionStatus(status)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if brandNull.Valid || last4Null.Valid {
		t.Card = &domain.CardInfo{Brand: brandNull.String, Last4: last4Null.String}
	}

	return &t, nil
}
