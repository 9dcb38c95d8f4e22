package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizzabarbas/pos/internal/dispatch"
	"github.com/pizzabarbas/pos/internal/domain"
	"github.com/pizzabarbas/pos/internal/invoice"
	"github.com/pizzabarbas/pos/internal/ledger"
	"github.com/pizzabarbas/pos/internal/reporting"
	"github.com/pizzabarbas/pos/internal/session"
)

type testServer struct {
	*httptest.Server
	store *ledger.Store
}

func newTestServer(t *testing.T, proc dispatch.Processor) *testServer {
	t.Helper()

	db, err := ledger.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := ledger.NewStore(db)
	reader := dispatch.NewSimulatedReader(time.Millisecond, time.Second,
		domain.CardInfo{Brand: "Visa", Last4: "4242"})
	wallet := &dispatch.SimulatedWallet{AuthDelay: time.Millisecond}
	caps := dispatch.Capabilities{Platform: dispatch.PlatformAndroid, NFC: true}
	dispatcher := dispatch.New(caps, proc, reader, wallet)

	router := NewRouter(
		session.NewService(session.DefaultRoster()),
		dispatcher,
		store,
		reporting.NewService(store),
		invoice.NewService(invoice.DefaultCompany(),
			invoice.SimulatedEmailSender{}, invoice.SimulatedSMSSender{}),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store}
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, &dispatch.DeterministicProcessor{})

	resp := ts.postJSON(t, "/api/v1/login", map[string]string{"pin": "5678"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sess := decode[session.Session](t, resp)
	assert.Equal(t, "5678", sess.EmployeeID)
	assert.Equal(t, session.RoleCashier, sess.Role)

	resp = ts.postJSON(t, "/api/v1/login", map[string]string{"pin": "1111"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListPaymentMethods(t *testing.T) {
	ts := newTestServer(t, &dispatch.DeterministicProcessor{})

	resp, err := http.Get(ts.URL + "/api/v1/payment-methods")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Methods []domain.PaymentMethod `json:"methods"`
	}](t, resp)
	assert.Equal(t, []domain.PaymentMethod{
		domain.MethodCash, domain.MethodCard, domain.MethodContactless, domain.MethodGooglePay,
	}, body.Methods)
}

func TestCreatePaymentFullFlow(t *testing.T) {
	ts := newTestServer(t, &dispatch.DeterministicProcessor{})

	// 23,50 entered on the keypad, 15% tip, paid by card.
	resp := ts.postJSON(t, "/api/v1/payments", map[string]any{
		"amount":      "23,50",
		"tip":         domain.PercentageTip(0.15),
		"method":      domain.MethodCard,
		"employee_id": "5678",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	txn := decode[domain.Transaction](t, resp)
	assert.Equal(t, domain.Money(2350), txn.Subtotal)
	assert.Equal(t, domain.Money(353), txn.Tip)
	assert.Equal(t, domain.Money(2703), txn.Total)
	assert.Equal(t, domain.StatusCompleted, txn.Status)

	// The record is in the ledger.
	got, err := ts.store.GetByID(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(2703), got.Total)
}

func TestCreatePaymentNoTip(t *testing.T) {
	ts := newTestServer(t, &dispatch.DeterministicProcessor{})

	resp := ts.postJSON(t, "/api/v1/payments", map[string]any{
		"amount":      "10.00",
		"tip":         domain.NoTip(),
		"method":      domain.MethodCash,
		"employee_id": "5678",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	txn := decode[domain.Transaction](t, resp)
	assert.True(t, txn.Tip.IsZero())
	assert.Equal(t, domain.Money(1000), txn.Total)
}

func TestCreatePaymentDeclineLeavesLedgerUnchanged(t *testing.T) {
	declined := &domain.DeclinedError{Method: domain.MethodContactless, Reason: "declined"}
	ts := newTestServer(t, &dispatch.DeterministicProcessor{Err: declined})

	resp := ts.postJSON(t, "/api/v1/payments", map[string]any{
		"amount":      "23,50",
		"tip":         domain.PercentageTip(0.15),
		"method":      domain.MethodContactless,
		"employee_id": "5678",
	})
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "declined", body["code"])

	count, err := ts.store.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreatePaymentRejectsBadInput(t *testing.T) {
	ts := newTestServer(t, &dispatch.DeterministicProcessor{})

	cases := []map[string]any{
		{"amount": "0,00", "tip": domain.NoTip(), "method": domain.MethodCash},
		{"amount": "abc", "tip": domain.NoTip(), "method": domain.MethodCash},
		{"amount": "10,00", "tip": domain.PercentageTip(0.25), "method": domain.MethodCash},
	}

	for _, body := range cases {
		resp := ts.postJSON(t, "/api/v1/payments", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %v", body)
		resp.Body.Close()
	}
}

func TestCreatePaymentUnsupportedMethod(t *testing.T) {
	ts := newTestServer(t, &dispatch.DeterministicProcessor{})

	// Apple Pay is not offered on an Android terminal.
	resp := ts.postJSON(t, "/api/v1/payments", map[string]any{
		"amount":      "10,00",
		"tip":         domain.NoTip(),
		"method":      domain.MethodApplePay,
		"employee_id": "5678",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSendReceipt(t *testing.T) {
	ts := newTestServer(t, &dispatch.DeterministicProcessor{})

	resp := ts.postJSON(t, "/api/v1/payments", map[string]any{
		"amount":      "23,50",
		"tip":         domain.PercentageTip(0.15),
		"method":      domain.MethodCard,
		"employee_id": "5678",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txn := decode[domain.Transaction](t, resp)

	resp = ts.postJSON(t, "/api/v1/payments/"+txn.ID+"/receipt", map[string]string{
		"channel":     "email",
		"destination": "client@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[invoice.DeliveryResult](t, resp)
	assert.True(t, result.Success)
	assert.Equal(t, "Facture envoyée par courriel", result.Message)

	// Unknown transaction.
	resp = ts.postJSON(t, "/api/v1/payments/TXN-nope/receipt", map[string]string{
		"channel": "sms", "destination": "+15145551234",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTransactionsAndReports(t *testing.T) {
	ts := newTestServer(t, &dispatch.DeterministicProcessor{})

	for _, amount := range []string{"10,00", "20,00"} {
		resp := ts.postJSON(t, "/api/v1/payments", map[string]any{
			"amount":      amount,
			"tip":         domain.NoTip(),
			"method":      domain.MethodCash,
			"employee_id": "5678",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/v1/transactions")
	require.NoError(t, err)
	list := decode[struct {
		Transactions []domain.Transaction `json:"transactions"`
		Count        int                  `json:"count"`
	}](t, resp)
	assert.Equal(t, 2, list.Count)

	resp, err = http.Get(ts.URL + "/api/v1/reports/overview")
	require.NoError(t, err)
	overview := decode[reporting.Overview](t, resp)
	assert.Equal(t, 2, overview.Sales.TotalTransactions)
	assert.Equal(t, domain.Money(3000), overview.Sales.TotalSales)
	assert.Equal(t, "2 paiement(s) effectué(s)", overview.Summary)

	resp, err = http.Get(ts.URL + "/api/v1/reports/employees")
	require.NoError(t, err)
	employees := decode[reporting.EmployeeSales](t, resp)
	require.Len(t, employees.Employees, 1)
	assert.Equal(t, "5678", employees.Employees[0].EmployeeID)
}
