package ports

import (
	"context"
	"io"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

// Authenticator is the inbound contract for login, logout and session resolution.
type Authenticator interface {
	Login(ctx context.Context, mobileNumber, code string) (*domain.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Dashboard(ctx context.Context, session domain.Session) (*domain.Dashboard, error)
}

// ClaimService is the inbound contract for the claim flow.
type ClaimService interface {
	ProcessDocument(ctx context.Context, session domain.Session, filename, contentType string, body io.Reader) (*domain.ClaimAssessment, error)
	VerifyNationalID(ctx context.Context, session domain.Session, nationalID string) (*domain.IdentityCheck, error)
	Evaluate(ctx context.Context, session domain.Session, submission domain.ClaimSubmission) (*domain.EligibilityDecision, error)
	Submit(ctx context.Context, session domain.Session, submission domain.ClaimSubmission) (*domain.ClaimLedgerEntry, error)
	ListClaims(ctx context.Context, session domain.Session) ([]domain.ClaimLedgerEntry, error)
}

// AssistantService answers claimant questions, degrading to canned replies.
type AssistantService interface {
	Reply(ctx context.Context, req domain.AssistantRequest) (*domain.AssistantReply, error)
}

// ClaimReviewer handles submitted-claim events in the worker.
type ClaimReviewer interface {
	Review(ctx context.Context, entry domain.ClaimLedgerEntry) (domain.ReviewPriority, error)
}
