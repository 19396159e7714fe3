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
	ProviderName = "market-api"
	ConsumerName = "market-web"

	StateProductOnSale = "product 1 is on sale by seller 10"
	StatePendingOrder  = "order 1 is pending for buyer 20"
	StateNoOrders      = "no orders exist"
)

const (
	SellerID int64 = 10
	BuyerID  int64 = 20

	ExistingProductID int64 = 1
	ExistingOrderID   int64 = 1
	MissingOrderID    int64 = 999

	ProductTitle = "Pact film camera"
	ProductPrice = "100.00"
	ProductImage = "https://example.pact/products/camera.png"
)

// OrderNumberPattern matches generated order numbers.
const OrderNumberPattern = `^ORD\d{14}[0-9A-F]{8}$`

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web consumer.
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

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
