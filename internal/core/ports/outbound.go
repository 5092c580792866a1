package ports

import (
	"context"
	"io"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

// UserDirectory resolves known users by mobile number.
type UserDirectory interface {
	Lookup(ctx context.Context, mobileNumber string) (*domain.UserRecord, error)
	List(ctx context.Context) ([]domain.UserRecord, error)
}

// CredentialVerifier checks the one-time code submitted with a login.
type CredentialVerifier interface {
	VerifyCode(ctx context.Context, mobileNumber, code string) bool
}

// SessionStore keeps authenticated sessions for the lifetime of the process.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// TokenIssuer binds a session id into a bearer token and back.
type TokenIssuer interface {
	Issue(session domain.Session) (string, error)
	Parse(token string) (sessionID string, err error)
}

// DocumentExtractor sends a bill image to the extraction backend.
type DocumentExtractor interface {
	Extract(ctx context.Context, filename, contentType string, body io.Reader) (*domain.ExtractedDocument, error)
}

// AssistantClient forwards a chat turn to the remote assistant.
type AssistantClient interface {
	Chat(ctx context.Context, req domain.AssistantRequest) (string, error)
}

// ClaimLedger is the append-only store of submitted claims.
type ClaimLedger interface {
	Append(ctx context.Context, entry domain.ClaimLedgerEntry) error
	List(ctx context.Context) ([]domain.ClaimLedgerEntry, error)
}

// ClaimEventPublisher announces submitted claims.
type ClaimEventPublisher interface {
	PublishClaimSubmitted(ctx context.Context, entry domain.ClaimLedgerEntry) error
}

// ClaimEventSubscriber delivers submitted claims to a handler until ctx ends.
type ClaimEventSubscriber interface {
	SubscribeClaimSubmitted(ctx context.Context, handler func(context.Context, domain.ClaimLedgerEntry) error) error
}

// LedgerExporter renders ledger entries as a downloadable document.
type LedgerExporter interface {
	Export(entries []domain.ClaimLedgerEntry) ([]byte, error)
	ContentType() string
}
