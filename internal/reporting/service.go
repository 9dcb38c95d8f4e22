// Package reporting builds the sales screens' read models from the
// ledger. It has read-only access: everything here is a projection.
package reporting

import (
	"fmt"
	"time"

	"github.com/pizzabarbas/pos/internal/ledger"
)

type Service struct {
	store *ledger.Store
}

func NewService(store *ledger.Store) *Service {
	return &Service{store: store}
}

// Overview is the sales-overview report for a period.
type Overview struct {
	From    time.Time      `json:"from"`
	To      time.Time      `json:"to"`
	Summary string         `json:"summary"`
	Sales   ledger.Summary `json:"sales"`
}

// EmployeeSales is the per-employee breakdown for a period.
type EmployeeSales struct {
	From      time.Time                `json:"from"`
	To        time.Time                `json:"to"`
	Employees []ledger.EmployeeSummary `json:"employees"`
}

// DayBounds returns the default reporting period: today, midnight to
// midnight, in local time.
func DayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.Add(24*time.Hour - time.Second)
}

func (s *Service) Overview(from, to time.Time) (*Overview, error) {
	sum, err := s.store.Aggregate(&from, &to)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}

	summary := "Aucun paiement effectué pendant cette période"
	if sum.TotalTransactions > 0 {
		summary = fmt.Sprintf("%d paiement(s) effectué(s)", sum.TotalTransactions)
	}

	return &Overview{From: from, To: to, Summary: summary, Sales: *sum}, nil
}

func (s *Service) EmployeeSales(from, to time.Time) (*EmployeeSales, error) {
	employees, err := s.store.AggregateByEmployee(&from, &to)
	if err != nil {
		return nil, fmt.Errorf("employee sales: %w", err)
	}
	return &EmployeeSales{From: from, To: to, Employees: employees}, nil
}
