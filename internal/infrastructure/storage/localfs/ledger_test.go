package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

func TestClaimLedgerEmptyWhenMissing(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	entries, err := NewClaimLedger(storage).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", entries)
	}
}

func TestClaimLedgerAppendPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	storage, _ := New(dir)
	ledger := NewClaimLedger(storage)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := domain.ClaimLedgerEntry{
			ID:           fmt.Sprintf("claim-%d", i),
			MobileNumber: "9028833979",
			Document:     domain.ExtractedDocument{BillAmount: "100"},
			Decision:     domain.EligibilityDecision{Eligible: true, RiskTier: domain.RiskLow},
			SubmittedAt:  time.Date(2025, 1, 1, 0, i, 0, 0, time.UTC),
		}
		if err := ledger.Append(ctx, entry); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	reopened := NewClaimLedger(storage)
	entries, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 || entries[0].ID != "claim-0" || entries[2].ID != "claim-2" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[1].Document.BillAmount != "100" || entries[1].Decision.RiskTier != domain.RiskLow {
		t.Fatalf("snapshot not preserved: %+v", entries[1])
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestClaimLedgerConcurrentAppends(t *testing.T) {
	storage, _ := New(t.TempDir())
	ledger := NewClaimLedger(storage)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := ledger.Append(context.Background(), domain.ClaimLedgerEntry{ID: fmt.Sprintf("c%d", i)}); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, _ := ledger.List(context.Background())
	if len(entries) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(entries))
	}
}

func TestClaimLedgerCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, claimsKey), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	storage, _ := New(dir)
	if _, err := NewClaimLedger(storage).List(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestStorageRejectsPathKeys(t *testing.T) {
	storage, _ := New(t.TempDir())
	for _, key := range []string{"", "../claims", "a/b", ".hidden"} {
		if err := storage.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Errorf("Save(%q) expected invalid input, got %v", key, err)
		}
	}

	if err := storage.Save(context.Background(), "note", strings.NewReader("hello")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rc, err := storage.Open(context.Background(), "note")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello" {
		t.Fatalf("unexpected content %q", data)
	}
}
