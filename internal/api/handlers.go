package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pizzabarbas/pos/internal/dispatch"
	"github.com/pizzabarbas/pos/internal/domain"
	"github.com/pizzabarbas/pos/internal/invoice"
	"github.com/pizzabarbas/pos/internal/ledger"
	"github.com/pizzabarbas/pos/internal/reporting"
	"github.com/pizzabarbas/pos/internal/session"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	sessions   *session.Service
	dispatcher *dispatch.Dispatcher
	store      *ledger.Store
	reports    *reporting.Service
	invoices   *invoice.Service
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "error": msg})
}

// writeFailure maps the dispatch error taxonomy to HTTP responses. The
// screen distinguishes failures by code, never by parsing the message.
func writeFailure(w http.ResponseWriter, err error) {
	var (
		inputErr       *domain.InputError
		unavailableErr *domain.UnavailableError
		declinedErr    *domain.DeclinedError
		timeoutErr     *domain.TimeoutError
		cancelledErr   *domain.CancelledError
	)

	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, "invalid_input", inputErr.Error())
	case errors.As(err, &unavailableErr):
		writeError(w, http.StatusUnprocessableEntity, "unavailable", unavailableErr.Error())
	case errors.As(err, &declinedErr):
		writeError(w, http.StatusPaymentRequired, "declined", declinedErr.Error())
	case errors.As(err, &timeoutErr):
		writeError(w, http.StatusRequestTimeout, "timeout", timeoutErr.Error())
	case errors.As(err, &cancelledErr):
		writeError(w, http.StatusConflict, "cancelled", cancelledErr.Error())
	case errors.Is(err, dispatch.ErrAttemptInProgress):
		writeError(w, http.StatusConflict, "attempt_in_progress", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// --- Login ---

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	sess, err := h.sessions.Authenticate(req.PIN)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_pin", "PIN invalide")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// --- ListPaymentMethods ---

func (h *Handlers) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"methods": h.dispatcher.Available(),
	})
}

// --- CreatePayment ---

type paymentRequest struct {
	Amount     string               `json:"amount"`
	Tip        domain.TipSelection  `json:"tip"`
	Method     domain.PaymentMethod `json:"method"`
	EmployeeID string               `json:"employee_id"`
	Retry      int                  `json:"retry,omitempty"`
}

// CreatePayment runs the whole flow for one sale: normalize the
// amount, resolve the tip, dispatch the attempt, and append the record
// on success. The request context carries user cancellation.
func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}

	subtotal, err := domain.ParseMoney(req.Amount)
	if err != nil {
		writeFailure(w, &domain.InputError{Reason: err.Error()})
		return
	}
	if subtotal.IsZero() {
		writeFailure(w, &domain.InputError{Reason: "amount must be greater than zero"})
		return
	}

	tip, err := domain.ComputeTip(subtotal, req.Tip)
	if err != nil {
		writeFailure(w, &domain.InputError{Reason: err.Error()})
		return
	}
	total := domain.ComputeTotal(subtotal, tip)

	txn, err := h.dispatcher.Dispatch(r.Context(), dispatch.Request{
		Method:     req.Method,
		Subtotal:   subtotal,
		Tip:        tip,
		Total:      total,
		EmployeeID: req.EmployeeID,
		Retry:      req.Retry,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}

	if err := h.store.Append(txn); err != nil {
		log.Printf("[api] append %s failed: %v", txn.ID, err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to record transaction")
		return
	}

	writeJSON(w, http.StatusCreated, txn)
}

// --- SendReceipt ---

func (h *Handlers) SendReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Channel     string `json:"channel"`
		Destination string `json:"destination"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	txn, err := h.store.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "not_found", "transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	var result *invoice.DeliveryResult
	switch req.Channel {
	case "email":
		result, err = h.invoices.SendEmail(txn, req.Destination)
	case "sms":
		result, err = h.invoices.SendSMS(txn, req.Destination)
	default:
		writeError(w, http.StatusBadRequest, "invalid_input", "channel must be email or sms")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// --- GetInvoice ---

func (h *Handlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	txn, err := h.store.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "not_found", "transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	html, err := h.invoices.RenderHTML(txn)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// --- ListTransactions ---

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.Filter{
		Method:     q.Get("method"),
		EmployeeID: q.Get("employee"),
		Status:     q.Get("status"),
		From:       parseTime(q.Get("from")),
		To:         parseTime(q.Get("to")),
		Limit:      parseIntDefault(q.Get("limit"), 50),
	}

	txns, err := h.store.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"count":        len(txns),
	})
}

// --- Reports ---

func (h *Handlers) reportPeriod(r *http.Request) (time.Time, time.Time) {
	from, to := reporting.DayBounds(time.Now())
	if t := parseTime(r.URL.Query().Get("from")); t != nil {
		from = *t
	}
	if t := parseTime(r.URL.Query().Get("to")); t != nil {
		to = *t
	}
	return from, to
}

func (h *Handlers) GetSalesOverview(w http.ResponseWriter, r *http.Request) {
	from, to := h.reportPeriod(r)

	overview, err := h.reports.Overview(from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

func (h *Handlers) GetEmployeeSales(w http.ResponseWriter, r *http.Request) {
	from, to := h.reportPeriod(r)

	sales, err := h.reports.EmployeeSales(from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sales)
}
