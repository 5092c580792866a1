package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/claimsense/internal/core/domain"
	"github.com/kirillkom/claimsense/internal/core/ports"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {}, ".heic": {}, ".tif": {}, ".tiff": {},
}

type ClaimUseCase struct {
	directory ports.UserDirectory
	extractor ports.DocumentExtractor
	ledger    ports.ClaimLedger
	publisher ports.ClaimEventPublisher
	now       func() time.Time
}

func NewClaimUseCase(
	directory ports.UserDirectory,
	extractor ports.DocumentExtractor,
	ledger ports.ClaimLedger,
	publisher ports.ClaimEventPublisher,
) *ClaimUseCase {
	return &ClaimUseCase{
		directory: directory,
		extractor: extractor,
		ledger:    ledger,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IsImageUpload accepts a declared image/* content type, or an image file extension
// when the content type is missing or generic. File contents are not inspected.
func IsImageUpload(filename, contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	if err == nil && strings.HasPrefix(mediaType, "image/") {
		return true
	}
	if err == nil && mediaType != "application/octet-stream" {
		return false
	}
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ProcessDocument extracts fields from a bill image, gates them and, when the gates
// pass, attaches the eligibility decision.
func (uc *ClaimUseCase) ProcessDocument(
	ctx context.Context,
	session domain.Session,
	filename, contentType string,
	body io.Reader,
) (*domain.ClaimAssessment, error) {
	if !IsImageUpload(filename, contentType) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process document", fmt.Errorf("%q is not an image file", filename))
	}

	doc, err := uc.extractor.Extract(ctx, filename, contentType, body)
	if err != nil {
		return nil, err
	}

	record, err := uc.lookup(ctx, session)
	if err != nil {
		return nil, err
	}

	assessment := &domain.ClaimAssessment{
		Document:     *doc,
		Verification: VerifyDocument(session, *doc, record),
	}
	if assessment.Verification.Verified {
		decision := Evaluate(session, *doc, record)
		assessment.Decision = &decision
	}

	slog.Info("document_processed",
		"session_id", session.ID,
		"stage", string(assessment.Verification.Stage),
		"extracted_fields", assessment.Verification.ExtractedCount,
	)
	return assessment, nil
}

func (uc *ClaimUseCase) VerifyNationalID(ctx context.Context, session domain.Session, nationalID string) (*domain.IdentityCheck, error) {
	if strings.TrimSpace(nationalID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "verify national id", errors.New("national id is required"))
	}
	record, err := uc.lookup(ctx, session)
	if err != nil {
		return nil, err
	}
	check := VerifyNationalID(record, nationalID)
	return &check, nil
}

func (uc *ClaimUseCase) Evaluate(ctx context.Context, session domain.Session, submission domain.ClaimSubmission) (*domain.EligibilityDecision, error) {
	record, err := uc.lookup(ctx, session)
	if err != nil {
		return nil, err
	}
	decision := uc.decide(session, submission, record)
	return &decision, nil
}

// Submit re-evaluates the document and appends the result to the ledger.
func (uc *ClaimUseCase) Submit(ctx context.Context, session domain.Session, submission domain.ClaimSubmission) (*domain.ClaimLedgerEntry, error) {
	record, err := uc.lookup(ctx, session)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "submit claim", errors.New(ReasonUserNotFound))
	}

	entry := domain.ClaimLedgerEntry{
		ID:           uuid.NewString(),
		MobileNumber: record.MobileNumber,
		PolicyNumber: record.Policy.PolicyNumber,
		Document:     submission.Document,
		Decision:     uc.decide(session, submission, record),
		SubmittedAt:  uc.now(),
	}
	if err := uc.ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append claim ledger: %w", err)
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishClaimSubmitted(ctx, entry); err != nil {
			slog.Warn("claim_event_publish_failed", "claim_id", entry.ID, "error", err)
		}
	}

	slog.Info("claim_submitted",
		"claim_id", entry.ID,
		"policy", entry.PolicyNumber,
		"eligible", entry.Decision.Eligible,
		"risk_tier", string(entry.Decision.RiskTier),
	)
	return &entry, nil
}

func (uc *ClaimUseCase) ListClaims(ctx context.Context, session domain.Session) ([]domain.ClaimLedgerEntry, error) {
	entries, err := uc.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claim ledger: %w", err)
	}
	out := make([]domain.ClaimLedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.MobileNumber == session.Profile.MobileNumber {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (uc *ClaimUseCase) decide(session domain.Session, submission domain.ClaimSubmission, record *domain.UserRecord) domain.EligibilityDecision {
	return EvaluateClaim(session, submission.Document, record, submission.NationalID)
}

// lookup returns nil without error when the session user is absent from the directory.
func (uc *ClaimUseCase) lookup(ctx context.Context, session domain.Session) (*domain.UserRecord, error) {
	record, err := uc.directory.Lookup(ctx, session.Profile.MobileNumber)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return record, nil
}
