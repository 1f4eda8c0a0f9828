//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "order-portal"

	StateOrdersBaseline = "orders baseline"
	StateOrderExists    = "pending order 6f1c2a7e exists"
	StateOrderMissing   = "no order 00000000-dead"
)

const (
	ExistingOrderID = "6f1c2a7e-3b4d-4c5e-8f90-a1b2c3d4e5f6"
	MissingOrderID  = "00000000-0000-4000-8000-00000000dead"

	ExampleCustomer = "Pact Customer"

	// UUIDPattern matches canonical lower-case UUIDs.
	UUIDPattern = `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`
	// StatusPattern matches every order status.
	StatusPattern = `PENDING|CONFIRMED|SHIPPED|DELIVERED|CANCELLED`
	// MoneyPattern matches amounts rendered with two decimals.
	MoneyPattern = `^\d+\.\d{2}$`
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the order portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCreateOrderPayload is a two-line order above the discount threshold.
func ExampleCreateOrderPayload() map[string]any {
	return map[string]any{
		"customerName": ExampleCustomer,
		"items": []map[string]any{
			{"product": "Notebook", "quantity": 1, "unitPrice": "3500.00"},
			{"product": "Monitor", "quantity": 1, "unitPrice": "300.00"},
		},
	}
}

// ExampleSummaryPayload is the summary of the seeded order.
func ExampleSummaryPayload() map[string]any {
	return map[string]any{
		"orderId":           ExistingOrderID,
		"customerName":      ExampleCustomer,
		"status":            "PENDING",
		"discount":          "10.00",
		"totalItems":        2,
		"subtotal":          "3800.00",
		"totalWithDiscount": "3420.00",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
