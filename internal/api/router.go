package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pizzabarbas/pos/internal/dispatch"
	"github.com/pizzabarbas/pos/internal/invoice"
	"github.com/pizzabarbas/pos/internal/ledger"
	"github.com/pizzabarbas/pos/internal/reporting"
	"github.com/pizzabarbas/pos/internal/session"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	sessions *session.Service,
	dispatcher *dispatch.Dispatcher,
	store *ledger.Store,
	reports *reporting.Service,
	invoices *invoice.Service,
) http.Handler {
	h := &Handlers{
		sessions:   sessions,
		dispatcher: dispatcher,
		store:      store,
		reports:    reports,
		invoices:   invoices,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Authentication.
		r.Post("/login", h.Login)

		// Payments.
		r.Get("/payment-methods", h.ListPaymentMethods)
		r.Post("/payments", h.CreatePayment)
		r.Post("/payments/{id}/receipt", h.SendReceipt)
		r.Get("/payments/{id}/invoice", h.GetInvoice)

		// Transactions.
		r.Get("/transactions", h.ListTransactions)

		// Reports.
		r.Get("/reports/overview", h.GetSalesOverview)
		r.Get("/reports/employees", h.GetEmployeeSales)
	})

	return r
}
