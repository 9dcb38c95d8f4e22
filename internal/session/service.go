// Package session handles PIN login and the employee context that is
// passed explicitly into the payment flow.
package session

import (
	"fmt"
	"sync"
)

type Role string

const (
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleDriver  Role = "driver"
	RoleAdmin   Role = "admin"
)

type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
	PIN  string `json:"-"`
}

// Session is the employee context for one login. The flow receives it
// as a value instead of reading ambient global state.
type Session struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
}

// Service authenticates PINs against the configured roster. There is
// no durable auth storage; the roster lives for the process.
type Service struct {
	mu    sync.RWMutex
	byPIN map[string]Employee
}

func NewService(employees []Employee) *Service {
	byPIN := make(map[string]Employee, len(employees))
	for _, e := range employees {
		byPIN[e.PIN] = e
	}
	return &Service{byPIN: byPIN}
}

// DefaultRoster is the demo employee list.
func DefaultRoster() []Employee {
	return []Employee{
		{ID: "1234", Name: "Manager", Role: RoleManager, PIN: "1234"},
		{ID: "5678", Name: "Caissier", Role: RoleCashier, PIN: "5678"},
		{ID: "9999", Name: "Chauffeur", Role: RoleDriver, PIN: "9999"},
		{ID: "0000", Name: "Admin", Role: RoleAdmin, PIN: "0000"},
	}
}

// Authenticate resolves a PIN to a session.
func (s *Service) Authenticate(pin string) (*Session, error) {
	s.mu.RLock()
	emp, ok := s.byPIN[pin]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("invalid PIN")
	}
	return &Session{EmployeeID: emp.ID, Name: emp.Name, Role: emp.Role}, nil
}
