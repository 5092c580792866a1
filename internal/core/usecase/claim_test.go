package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

func newClaimForTest(doc domain.ExtractedDocument) (*ClaimUseCase, *extractorFake, *ledgerFake, *publisherFake) {
	extractor := &extractorFake{doc: &doc}
	ledger := &ledgerFake{}
	publisher := &publisherFake{}
	return NewClaimUseCase(newDirectoryFake(), extractor, ledger, publisher), extractor, ledger, publisher
}

func TestIsImageUpload(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        bool
	}{
		{filename: "bill.jpg", contentType: "image/jpeg", want: true},
		{filename: "bill", contentType: "image/png", want: true},
		{filename: "bill.PNG", contentType: "", want: true},
		{filename: "bill.png", contentType: "application/octet-stream", want: true},
		{filename: "bill.pdf", contentType: "application/pdf", want: false},
		{filename: "bill.png", contentType: "text/plain", want: false},
		{filename: "notes.txt", contentType: "", want: false},
	}
	for _, tc := range tests {
		if got := IsImageUpload(tc.filename, tc.contentType); got != tc.want {
			t.Errorf("IsImageUpload(%q, %q) = %v, want %v", tc.filename, tc.contentType, got, tc.want)
		}
	}
}

func TestProcessDocumentVerified(t *testing.T) {
	uc, extractor, _, _ := newClaimForTest(domain.ExtractedDocument{
		Name: "Vandan Dalvi", Age: "21", HospitalName: "City Hospital", BillAmount: "45000", ClaimReason: "Fever",
	})
	session := sessionFor(testUsers()[0])

	got, err := uc.ProcessDocument(context.Background(), session, "bill.jpg", "image/jpeg", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if extractor.calls != 1 || extractor.filename != "bill.jpg" {
		t.Fatalf("unexpected extractor usage: %+v", extractor)
	}
	if !got.Verification.Verified || got.Decision == nil {
		t.Fatalf("expected verified assessment with decision: %+v", got)
	}
	if got.Decision.RiskTier != domain.RiskMedium {
		t.Fatalf("unexpected tier %s", got.Decision.RiskTier)
	}
}

func TestProcessDocumentRejectedHasNoDecision(t *testing.T) {
	uc, _, _, _ := newClaimForTest(domain.ExtractedDocument{Name: "Someone Else", BillAmount: "100"})
	got, err := uc.ProcessDocument(context.Background(), sessionFor(testUsers()[0]), "bill.png", "image/png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if got.Verification.Verified || got.Decision != nil || got.Verification.Stage != domain.StageIdentity {
		t.Fatalf("unexpected assessment: %+v", got)
	}
}

func TestProcessDocumentRejectsNonImage(t *testing.T) {
	uc, extractor, _, _ := newClaimForTest(domain.ExtractedDocument{})
	_, err := uc.ProcessDocument(context.Background(), sessionFor(testUsers()[0]), "bill.pdf", "application/pdf", strings.NewReader("pdf"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if extractor.calls != 0 {
		t.Fatalf("extractor must not be called for non-images")
	}
}

func TestProcessDocumentExtractionError(t *testing.T) {
	uc, extractor, _, _ := newClaimForTest(domain.ExtractedDocument{})
	extractor.err = &domain.ExtractionError{Failure: domain.ExtractionFailurePayloadTooLarge, StatusCode: 413}

	_, err := uc.ProcessDocument(context.Background(), sessionFor(testUsers()[0]), "bill.jpg", "image/jpeg", strings.NewReader("img"))
	var extractionErr *domain.ExtractionError
	if !errors.As(err, &extractionErr) || !domain.IsKind(err, domain.ErrPayloadTooLarge) {
		t.Fatalf("expected payload too large extraction error, got %v", err)
	}
}

func TestSubmitAppendsAndPublishes(t *testing.T) {
	uc, _, ledger, publisher := newClaimForTest(domain.ExtractedDocument{})
	session := sessionFor(testUsers()[1])
	submission := domain.ClaimSubmission{
		Document: domain.ExtractedDocument{
			Name: "Shravani Rangnekar", Age: "21", HospitalName: "Ruby Hall Clinic", BillAmount: "1500000", ClaimReason: "Surgery",
		},
	}

	entry, err := uc.Submit(context.Background(), session, submission)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if entry.ID == "" || entry.PolicyNumber != "POL987654" || entry.SubmittedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.Decision.Eligible || entry.Decision.Reason != ReasonExceedsCoverage {
		t.Fatalf("expected server-side decision, got %+v", entry.Decision)
	}
	if len(ledger.entries) != 1 || len(publisher.published) != 1 {
		t.Fatalf("expected one append and one publish, got %d/%d", len(ledger.entries), len(publisher.published))
	}
}

func TestEvaluateRejectsPartialDocument(t *testing.T) {
	uc, _, _, _ := newClaimForTest(domain.ExtractedDocument{})
	session := sessionFor(testUsers()[0])
	submission := domain.ClaimSubmission{
		Document: domain.ExtractedDocument{Name: "Vandan Dalvi", BillAmount: "5000"},
	}

	decision, err := uc.Evaluate(context.Background(), session, submission)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !decision.IdentityVerified || decision.Eligible || decision.RiskTier != domain.RiskHigh {
		t.Fatalf("expected ineligible high-risk decision, got %+v", decision)
	}
	if !strings.HasPrefix(decision.Reason, "Partial information extracted (2/5 fields)") {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}
}

func TestSubmitRecordsPartialDocumentAsIneligible(t *testing.T) {
	uc, _, ledger, _ := newClaimForTest(domain.ExtractedDocument{})
	entry, err := uc.Submit(context.Background(), sessionFor(testUsers()[0]), domain.ClaimSubmission{
		Document: domain.ExtractedDocument{Name: "Vandan Dalvi", BillAmount: "5000"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if entry.Decision.Eligible || entry.Decision.RiskTier != domain.RiskHigh {
		t.Fatalf("expected ineligible entry, got %+v", entry.Decision)
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Decision.Eligible {
		t.Fatalf("ledger must hold the ineligible decision: %+v", ledger.entries)
	}
}

func TestSubmitRecordsUnreadableAmountAsIneligible(t *testing.T) {
	uc, _, _, _ := newClaimForTest(domain.ExtractedDocument{})
	entry, err := uc.Submit(context.Background(), sessionFor(testUsers()[0]), domain.ClaimSubmission{
		Document: domain.ExtractedDocument{
			Name: "Vandan Dalvi", Age: "21", HospitalName: "City Hospital", BillAmount: "9223372036854775808", ClaimReason: "Fever",
		},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if entry.Decision.Eligible || entry.Decision.AmountParsed || entry.Decision.RiskTier != domain.RiskHigh {
		t.Fatalf("expected ineligible decision for unreadable amount, got %+v", entry.Decision)
	}
	if !strings.Contains(entry.Decision.Reason, "bill amount is missing or invalid") {
		t.Fatalf("unexpected reason %q", entry.Decision.Reason)
	}
}

func TestSubmitSucceedsWhenPublishFails(t *testing.T) {
	uc, _, ledger, publisher := newClaimForTest(domain.ExtractedDocument{})
	publisher.err = errors.New("nats down")

	_, err := uc.Submit(context.Background(), sessionFor(testUsers()[0]), domain.ClaimSubmission{
		Document: domain.ExtractedDocument{Name: "Vandan Dalvi", BillAmount: "100"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(ledger.entries) != 1 {
		t.Fatalf("expected entry appended")
	}
}

func TestSubmitLedgerFailure(t *testing.T) {
	uc, _, ledger, publisher := newClaimForTest(domain.ExtractedDocument{})
	ledger.appendErr = errors.New("disk full")

	if _, err := uc.Submit(context.Background(), sessionFor(testUsers()[0]), domain.ClaimSubmission{}); err == nil {
		t.Fatalf("expected error")
	}
	if len(publisher.published) != 0 {
		t.Fatalf("must not publish when append fails")
	}
}

func TestSubmitWithNationalIDMismatch(t *testing.T) {
	uc, _, _, _ := newClaimForTest(domain.ExtractedDocument{})
	id := "0000-0000-0000"
	entry, err := uc.Submit(context.Background(), sessionFor(testUsers()[0]), domain.ClaimSubmission{
		Document:   domain.ExtractedDocument{Name: "Vandan Dalvi", BillAmount: "100"},
		NationalID: &id,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if entry.Decision.IdentityVerified || entry.Decision.Reason != ReasonNationalIDMismatch {
		t.Fatalf("unexpected decision %+v", entry.Decision)
	}
}

func TestListClaimsFiltersBySession(t *testing.T) {
	uc, _, ledger, _ := newClaimForTest(domain.ExtractedDocument{})
	ledger.entries = []domain.ClaimLedgerEntry{
		{ID: "1", MobileNumber: "9028833979"},
		{ID: "2", MobileNumber: "9123456780"},
		{ID: "3", MobileNumber: "9028833979"},
	}

	got, err := uc.ListClaims(context.Background(), sessionFor(testUsers()[0]))
	if err != nil {
		t.Fatalf("ListClaims() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("unexpected claims %+v", got)
	}
}

func TestVerifyNationalIDUseCase(t *testing.T) {
	uc, _, _, _ := newClaimForTest(domain.ExtractedDocument{})
	ctx := context.Background()

	check, err := uc.VerifyNationalID(ctx, sessionFor(testUsers()[1]), "5678 1234 9012")
	if err != nil || !check.Verified {
		t.Fatalf("VerifyNationalID() = %+v, %v", check, err)
	}
	if _, err := uc.VerifyNationalID(ctx, sessionFor(testUsers()[1]), " "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
