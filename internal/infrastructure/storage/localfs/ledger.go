package localfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

const claimsKey = "claims"

// ClaimLedger keeps every submitted claim as one JSON array under the "claims" key.
// Appends are serialized within the process only.
type ClaimLedger struct {
	storage *Storage
	mu      sync.Mutex
}

func NewClaimLedger(storage *Storage) *ClaimLedger {
	return &ClaimLedger{storage: storage}
}

func (l *ClaimLedger) Append(ctx context.Context, entry domain.ClaimLedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal claim ledger: %w", err)
	}
	return l.storage.Save(ctx, claimsKey, bytes.NewReader(data))
}

func (l *ClaimLedger) List(ctx context.Context) ([]domain.ClaimLedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *ClaimLedger) load(ctx context.Context) ([]domain.ClaimLedgerEntry, error) {
	rc, err := l.storage.Open(ctx, claimsKey)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return []domain.ClaimLedgerEntry{}, nil
		}
		return nil, err
	}
	defer rc.Close()

	var entries []domain.ClaimLedgerEntry
	if err := json.NewDecoder(rc).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode claim ledger: %w", err)
	}
	if entries == nil {
		entries = []domain.ClaimLedgerEntry{}
	}
	return entries, nil
}
