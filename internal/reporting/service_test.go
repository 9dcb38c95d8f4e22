package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizzabarbas/pos/internal/domain"
	"github.com/pizzabarbas/pos/internal/ledger"
)

func newTestService(t *testing.T) (*Service, *ledger.Store) {
	t.Helper()
	db, err := ledger.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := ledger.NewStore(db)
	return NewService(store), store
}

func TestDayBounds(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 45, 12, 0, time.UTC)
	from, to := DayBounds(now)

	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC), to)
}

func TestOverviewEmptyPeriod(t *testing.T) {
	svc, _ := newTestService(t)
	from, to := DayBounds(time.Now())

	overview, err := svc.Overview(from, to)
	require.NoError(t, err)
	assert.Equal(t, "Aucun paiement effectué pendant cette période", overview.Summary)
	assert.Equal(t, 0, overview.Sales.TotalTransactions)
}

func TestOverviewWithSales(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Now()

	require.NoError(t, store.Append(&domain.Transaction{
		ID: "TXN-1", Subtotal: 2350, Tip: 353, Total: 2703,
		PaymentMethod: domain.MethodCard, EmployeeID: "5678",
		CreatedAt: now, Status: domain.StatusCompleted,
	}))

	from, to := DayBounds(now)
	overview, err := svc.Overview(from, to)
	require.NoError(t, err)

	assert.Equal(t, "1 paiement(s) effectué(s)", overview.Summary)
	assert.Equal(t, domain.Money(2350), overview.Sales.TotalSales)
	assert.Equal(t, domain.Money(353), overview.Sales.TotalTips)
	assert.Equal(t, domain.Money(2703), overview.Sales.TotalCollected)
}

func TestEmployeeSales(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Now()

	for i, emp := range []string{"1234", "5678", "5678"} {
		require.NoError(t, store.Append(&domain.Transaction{
			ID: domain.NewTransactionID(), Subtotal: 1000, Tip: 150, Total: 1150,
			PaymentMethod: domain.MethodCash, EmployeeID: emp,
			CreatedAt: now.Add(time.Duration(i) * time.Second), Status: domain.StatusCompleted,
		}))
	}

	from, to := DayBounds(now)
	sales, err := svc.EmployeeSales(from, to)
	require.NoError(t, err)
	require.Len(t, sales.Employees, 2)
	assert.Equal(t, 2, sales.Employees[1].TotalTransactions)
	assert.Equal(t, domain.Money(300), sales.Employees[1].TotalTips)
}
