package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizzabarbas/pos/internal/dispatch"
	"github.com/pizzabarbas/pos/internal/domain"
	"github.com/pizzabarbas/pos/internal/entry"
	"github.com/pizzabarbas/pos/internal/ledger"
)

// TestSaleFlowEndToEnd drives a full sale the way the screens do:
// keypad tokens, tip preset, dispatch, ledger append.
func TestSaleFlowEndToEnd(t *testing.T) {
	db, err := ledger.InitDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	store := ledger.NewStore(db)

	reader := dispatch.NewSimulatedReader(time.Millisecond, time.Second,
		domain.CardInfo{Brand: "Visa", Last4: "4242"})
	dispatcher := dispatch.New(
		dispatch.Capabilities{Platform: dispatch.PlatformAndroid, NFC: true},
		&dispatch.DeterministicProcessor{},
		reader,
		&dispatch.SimulatedWallet{AuthDelay: time.Millisecond},
	)

	// 2, 3, comma, 5, 0 on the keypad.
	k := entry.New()
	require.NoError(t, k.PressDigit(2))
	require.NoError(t, k.PressDigit(3))
	k.PressSeparator()
	require.NoError(t, k.PressDigit(5))
	require.NoError(t, k.PressDigit(0))

	subtotal, err := k.Submit()
	require.NoError(t, err)
	require.Equal(t, domain.Money(2350), subtotal)

	tip, err := domain.ComputeTip(subtotal, domain.PercentageTip(0.15))
	require.NoError(t, err)
	total := domain.ComputeTotal(subtotal, tip)

	txn, err := dispatcher.Dispatch(context.Background(), dispatch.Request{
		Method:     domain.MethodCard,
		Subtotal:   subtotal,
		Tip:        tip,
		Total:      total,
		EmployeeID: "5678",
	})
	require.NoError(t, err)

	assert.Equal(t, "23.50", txn.Subtotal.String())
	assert.Equal(t, "3.53", txn.Tip.String())
	assert.Equal(t, "27.03", txn.Total.String())
	assert.Equal(t, domain.StatusCompleted, txn.Status)

	require.NoError(t, store.Append(txn))

	txns, err := store.List(ledger.Filter{})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, txn.ID, txns[0].ID)
}
