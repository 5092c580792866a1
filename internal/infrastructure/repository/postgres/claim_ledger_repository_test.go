package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

func newLedgerWithMock(t *testing.T) (*ClaimLedgerRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewClaimLedgerRepository(db), mock, func() { _ = db.Close() }
}

func TestAppendInsertsSnapshot(t *testing.T) {
	repo, mock, done := newLedgerWithMock(t)
	defer done()

	submitted := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	entry := domain.ClaimLedgerEntry{
		ID:           "c1",
		MobileNumber: "9028833979",
		PolicyNumber: "POL123456",
		Document:     domain.ExtractedDocument{Name: "Vandan Dalvi", BillAmount: "15000"},
		Decision:     domain.EligibilityDecision{Eligible: true, IdentityVerified: true, RiskTier: domain.RiskLow, Reason: "eligible."},
		SubmittedAt:  submitted,
	}

	mock.ExpectExec("INSERT INTO claim_ledger").
		WithArgs("c1", "9028833979", "POL123456", sqlmock.AnyArg(), sqlmock.AnyArg(), true, "Low", submitted).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendWrapsDatabaseError(t *testing.T) {
	repo, mock, done := newLedgerWithMock(t)
	defer done()

	dbErr := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO claim_ledger").WillReturnError(dbErr)

	if err := repo.Append(context.Background(), domain.ClaimLedgerEntry{ID: "c1"}); !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListDecodesInSequenceOrder(t *testing.T) {
	repo, mock, done := newLedgerWithMock(t)
	defer done()

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "mobile_number", "policy_number", "document", "decision", "submitted_at"}).
		AddRow("c1", "9028833979", "POL123456", []byte(`{"name":"Vandan Dalvi","billAmount":"15000"}`), []byte(`{"eligible":true,"riskTier":"Low"}`), at).
		AddRow("c2", "9123456780", "POL987654", []byte(`{"name":"Shravani Rangnekar"}`), []byte(`{"eligible":false,"riskTier":"High"}`), at.Add(time.Minute))
	mock.ExpectQuery("SELECT id, mobile_number, policy_number, document, decision, submitted_at").WillReturnRows(rows)

	entries, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "c1" || entries[1].ID != "c2" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].Document.BillAmount != "15000" || !entries[0].Decision.Eligible {
		t.Fatalf("snapshot not decoded: %+v", entries[0])
	}
	if entries[1].Decision.RiskTier != domain.RiskHigh {
		t.Fatalf("unexpected tier %s", entries[1].Decision.RiskTier)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRejectsCorruptSnapshot(t *testing.T) {
	repo, mock, done := newLedgerWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "mobile_number", "policy_number", "document", "decision", "submitted_at"}).
		AddRow("c1", "9028833979", "POL123456", []byte(`{`), []byte(`{}`), time.Now())
	mock.ExpectQuery("SELECT id").WillReturnRows(rows)

	if _, err := repo.List(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs(schemaLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS claim_ledger").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
