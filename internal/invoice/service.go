// Package invoice renders customer invoices from finished transactions
// and delivers them by email or SMS through pluggable senders.
package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"log"

	"github.com/pizzabarbas/pos/internal/domain"
)

// CompanyInfo is the merchant header printed on every invoice.
type CompanyInfo struct {
	Name    string
	Address string
	City    string
	Phone   string
	Email   string
	Website string
}

// DefaultCompany matches the demo merchant.
func DefaultCompany() CompanyInfo {
	return CompanyInfo{
		Name:    "Pizza Barbas",
		Address: "123 Rue de la Pizza",
		City:    "Montréal, QC H1A 1A1",
		Phone:   "(514) 123-4567",
		Email:   "info@pizzabarbas.com",
		Website: "www.pizzabarbas.com",
	}
}

// EmailSender delivers a rendered invoice. Real transport is an
// external collaborator; the core only sees success or failure.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

// SMSSender delivers a short receipt summary.
type SMSSender interface {
	Send(to, message string) error
}

// SimulatedEmailSender logs instead of sending.
type SimulatedEmailSender struct{}

func (SimulatedEmailSender) Send(to, subject, htmlBody string) error {
	log.Printf("[invoice] simulated email to %s: %s (%d bytes)", to, subject, len(htmlBody))
	return nil
}

// SimulatedSMSSender logs instead of sending.
type SimulatedSMSSender struct{}

func (SimulatedSMSSender) Send(to, message string) error {
	log.Printf("[invoice] simulated SMS to %s: %s", to, message)
	return nil
}

// DeliveryResult is what the payment-success screen shows after a
// share action.
type DeliveryResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Service struct {
	company CompanyInfo
	email   EmailSender
	sms     SMSSender
	tmpl    *template.Template
}

func NewService(company CompanyInfo, email EmailSender, sms SMSSender) *Service {
	return &Service{
		company: company,
		email:   email,
		sms:     sms,
		tmpl:    template.Must(template.New("invoice").Parse(invoiceHTML)),
	}
}

// RenderHTML produces the printable invoice for a transaction.
func (s *Service) RenderHTML(t *domain.Transaction) (string, error) {
	data := struct {
		Company     CompanyInfo
		Transaction *domain.Transaction
		Date        string
		Subtotal    string
		Tip         string
		Total       string
		Method      string
	}{
		Company:     s.company,
		Transaction: t,
		Date:        t.CreatedAt.Format("02/01/2006 15:04"),
		Subtotal:    t.Subtotal.Display(),
		Tip:         t.Tip.Display(),
		Total:       t.Total.Display(),
		Method:      methodLabel(t.PaymentMethod),
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}

// SendEmail renders and emails the invoice.
func (s *Service) SendEmail(t *domain.Transaction, to string) (*DeliveryResult, error) {
	body, err := s.RenderHTML(t)
	if err != nil {
		return nil, err
	}
	subject := fmt.Sprintf("Facture %s - %s", t.ID, s.company.Name)
	if err := s.email.Send(to, subject, body); err != nil {
		return &DeliveryResult{Success: false, Message: err.Error()}, nil
	}
	return &DeliveryResult{Success: true, Message: "Facture envoyée par courriel"}, nil
}

// SendSMS delivers a short text summary of the receipt.
func (s *Service) SendSMS(t *domain.Transaction, to string) (*DeliveryResult, error) {
	msg := fmt.Sprintf("%s - Facture %s: total %s $ (%s). Merci!",
		s.company.Name, t.ID, t.Total.Display(), methodLabel(t.PaymentMethod))
	if err := s.sms.Send(to, msg); err != nil {
		return &DeliveryResult{Success: false, Message: err.Error()}, nil
	}
	return &DeliveryResult{Success: true, Message: "Facture envoyée par SMS"}, nil
}

func methodLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.MethodCash:
		return "Comptant"
	case domain.MethodCard:
		return "Carte"
	case domain.MethodContactless:
		return "Sans contact"
	case domain.MethodApplePay:
		return "Apple Pay"
	case domain.MethodGooglePay:
		return "Google Pay"
	default:
		return string(m)
	}
}

const invoiceHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Facture {{.Transaction.ID}}</title>
</head>
<body>
<div class="invoice">
  <div class="header">
    <h1>{{.Company.Name}}</h1>
    <p>{{.Company.Address}}<br>{{.Company.City}}<br>Tél: {{.Company.Phone}}</p>
  </div>
  <h2>Facture {{.Transaction.ID}}</h2>
  <table class="info">
    <tr><td>Date</td><td>{{.Date}}</td></tr>
    <tr><td>Employé</td><td>{{.Transaction.EmployeeID}}</td></tr>
    <tr><td>Méthode de paiement</td><td>{{.Method}}</td></tr>
    {{if .Transaction.Card}}<tr><td>Carte</td><td>{{.Transaction.Card.Brand}} ****{{.Transaction.Card.Last4}}</td></tr>{{end}}
  </table>
  <table class="amounts">
    <tr><td>Sous-total</td><td>{{.Subtotal}} $</td></tr>
    <tr><td>Pourboire</td><td>{{.Tip}} $</td></tr>
    <tr class="total"><td>Total</td><td>{{.Total}} $</td></tr>
  </table>
  <div class="footer">
    <p>Merci de votre visite!</p>
    <p>{{.Company.Email}} | {{.Company.Website}}</p>
  </div>
</div>
</body>
</html>`
