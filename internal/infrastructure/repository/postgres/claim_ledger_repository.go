package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

// ClaimLedgerRepository is append-only: rows are inserted and read back in seq order, never updated.
type ClaimLedgerRepository struct {
	db *sql.DB
}

func NewClaimLedgerRepository(db *sql.DB) *ClaimLedgerRepository {
	return &ClaimLedgerRepository{db: db}
}

func (r *ClaimLedgerRepository) Append(ctx context.Context, entry domain.ClaimLedgerEntry) error {
	document, err := json.Marshal(entry.Document)
	if err != nil {
		return fmt.Errorf("marshal claim document: %w", err)
	}
	decision, err := json.Marshal(entry.Decision)
	if err != nil {
		return fmt.Errorf("marshal claim decision: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO claim_ledger (id, mobile_number, policy_number, document, decision, eligible, risk_tier, submitted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, entry.ID, entry.MobileNumber, entry.PolicyNumber, document, decision,
		entry.Decision.Eligible, string(entry.Decision.RiskTier), entry.SubmittedAt)
	if err != nil {
		return fmt.Errorf("append claim: %w", err)
	}
	return nil
}

func (r *ClaimLedgerRepository) List(ctx context.Context) ([]domain.ClaimLedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, mobile_number, policy_number, document, decision, submitted_at
FROM claim_ledger
ORDER BY seq ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ClaimLedgerEntry, 0)
	for rows.Next() {
		entry, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return out, nil
}

type claimScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row claimScanner) (domain.ClaimLedgerEntry, error) {
	var (
		entry    domain.ClaimLedgerEntry
		document []byte
		decision []byte
	)
	if err := row.Scan(&entry.ID, &entry.MobileNumber, &entry.PolicyNumber, &document, &decision, &entry.SubmittedAt); err != nil {
		return domain.ClaimLedgerEntry{}, fmt.Errorf("scan claim: %w", err)
	}
	if err := json.Unmarshal(document, &entry.Document); err != nil {
		return domain.ClaimLedgerEntry{}, fmt.Errorf("decode claim %s document: %w", entry.ID, err)
	}
	if err := json.Unmarshal(decision, &entry.Decision); err != nil {
		return domain.ClaimLedgerEntry{}, fmt.Errorf("decode claim %s decision: %w", entry.ID, err)
	}
	entry.SubmittedAt = entry.SubmittedAt.UTC()
	return entry, nil
}
