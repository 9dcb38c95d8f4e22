package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pizzabarbas/pos/internal/api"
	"github.com/pizzabarbas/pos/internal/dispatch"
	"github.com/pizzabarbas/pos/internal/domain"
	"github.com/pizzabarbas/pos/internal/invoice"
	"github.com/pizzabarbas/pos/internal/ledger"
	"github.com/pizzabarbas/pos/internal/reporting"
	"github.com/pizzabarbas/pos/internal/session"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// The ledger lives for the process by default; point POS_DB at a
	// file to keep transactions across restarts.
	dsn := os.Getenv("POS_DB")
	if dsn == "" {
		dsn = ":memory:"
	}

	platform := dispatch.Platform(os.Getenv("POS_PLATFORM"))
	if platform != dispatch.PlatformIOS && platform != dispatch.PlatformAndroid {
		platform = dispatch.PlatformAndroid
	}

	successRate := 0.9
	if v := os.Getenv("POS_SUCCESS_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			successRate = parsed
		}
	}

	log.Printf("Initializing ledger at %s", dsn)
	db, err := ledger.InitDB(dsn)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	store := ledger.NewStore(db)

	// Create the simulated terminal hardware and processor.
	proc := dispatch.NewSimulatedProcessor(successRate, 2*time.Second, time.Now().UnixNano())
	reader := dispatch.NewSimulatedReader(2*time.Second, 10*time.Second,
		domain.CardInfo{Brand: "Visa", Last4: "4242"})
	wallet := &dispatch.SimulatedWallet{AuthDelay: 2 * time.Second}
	caps := dispatch.Capabilities{Platform: platform, NFC: true}

	dispatcher := dispatch.New(caps, proc, reader, wallet)

	// Create services.
	sessions := session.NewService(session.DefaultRoster())
	reports := reporting.NewService(store)
	invoices := invoice.NewService(invoice.DefaultCompany(),
		invoice.SimulatedEmailSender{}, invoice.SimulatedSMSSender{})

	// Seed transactions if the ledger is empty.
	count, err := store.Count()
	if err != nil {
		log.Fatalf("Failed to count transactions: %v", err)
	}
	if count == 0 {
		log.Println("Ledger is empty, seeding transactions from testdata...")
		if err := seedTransactions(store); err != nil {
			log.Printf("WARNING: Failed to seed transactions: %v", err)
		}
	} else {
		log.Printf("Ledger already has %d transactions, skipping seed", count)
	}

	// Create router.
	router := api.NewRouter(sessions, dispatcher, store, reports, invoices)

	log.Printf("Pizza Barbas POS Terminal")
	log.Printf("Platform: %s, NFC: yes, success rate: %.0f%%", platform, successRate*100)
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/login")
	log.Printf("  GET    /api/v1/payment-methods")
	log.Printf("  POST   /api/v1/payments")
	log.Printf("  POST   /api/v1/payments/{id}/receipt")
	log.Printf("  GET    /api/v1/payments/{id}/invoice")
	log.Printf("  GET    /api/v1/transactions")
	log.Printf("  GET    /api/v1/reports/overview")
	log.Printf("  GET    /api/v1/reports/employees")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seedTransactions(store *ledger.Store) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		"testdata/transactions.json",
		filepath.Join(".", "testdata", "transactions.json"),
	}

	// Also try to find relative to the executable.
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", "transactions.json"),
			filepath.Join(dir, "..", "..", "testdata", "transactions.json"),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded transactions from %s", path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find transactions.json in any candidate path: %w", loadErr)
	}

	var txns []domain.Transaction
	if err := json.Unmarshal(data, &txns); err != nil {
		return fmt.Errorf("unmarshal transactions: %w", err)
	}

	inserted, err := store.BulkInsert(txns)
	if err != nil {
		return fmt.Errorf("bulk insert: %w", err)
	}

	log.Printf("Seeded %d transactions (out of %d in file)", inserted, len(txns))
	return nil
}
