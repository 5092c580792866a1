package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/claimsense/internal/core/domain"
	"github.com/kirillkom/claimsense/internal/core/ports"
)

var (
	mobileNumberPattern = regexp.MustCompile(`^[0-9]{10}$`)
	oneTimeCodePattern  = regexp.MustCompile(`^[0-9]{4}$`)
)

type AuthUseCase struct {
	directory ports.UserDirectory
	verifier  ports.CredentialVerifier
	sessions  ports.SessionStore
	tokens    ports.TokenIssuer
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthUseCase(
	directory ports.UserDirectory,
	verifier ports.CredentialVerifier,
	sessions ports.SessionStore,
	tokens ports.TokenIssuer,
	ttl time.Duration,
) *AuthUseCase {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthUseCase{
		directory: directory,
		verifier:  verifier,
		sessions:  sessions,
		tokens:    tokens,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login checks the one-time code first and only then looks the mobile number up.
func (uc *AuthUseCase) Login(ctx context.Context, mobileNumber, code string) (*domain.LoginResult, error) {
	mobileNumber = strings.TrimSpace(mobileNumber)
	code = strings.TrimSpace(code)
	if !mobileNumberPattern.MatchString(mobileNumber) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "login", errors.New("mobile number must be 10 digits"))
	}
	if !oneTimeCodePattern.MatchString(code) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "login", errors.New("one-time code must be 4 digits"))
	}

	if !uc.verifier.VerifyCode(ctx, mobileNumber, code) {
		slog.Warn("login_rejected", "reason", "invalid_code")
		return nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("invalid one-time code"))
	}

	record, err := uc.directory.Lookup(ctx, mobileNumber)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			slog.Warn("login_rejected", "reason", "unknown_mobile")
			return nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("mobile number not registered"))
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := uc.now()
	session := domain.Session{
		ID:        uuid.NewString(),
		Profile:   record.Profile(),
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, err := uc.tokens.Issue(session)
	if err != nil {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	slog.Info("login_succeeded", "session_id", session.ID)
	return &domain.LoginResult{Token: token, Session: session}, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	sessionID, err := uc.tokens.Parse(token)
	if err != nil {
		return domain.WrapError(domain.ErrUnauthorized, "logout", err)
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	slog.Info("logout", "session_id", sessionID)
	return nil
}

func (uc *AuthUseCase) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	sessionID, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", err)
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", err)
		}
		return nil, err
	}
	if session.Expired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", errors.New("session expired"))
	}
	return session, nil
}

func (uc *AuthUseCase) Dashboard(ctx context.Context, session domain.Session) (*domain.Dashboard, error) {
	record, err := uc.directory.Lookup(ctx, session.Profile.MobileNumber)
	if err != nil {
		return nil, err
	}
	return &domain.Dashboard{
		Profile:           session.Profile,
		Policy:            record.Policy,
		RemainingCoverage: record.Policy.RemainingCoverage(),
		BankAccountLinked: strings.TrimSpace(record.BankAccount.AccountRef) != "",
		HasPriorClaim:     record.BankAccount.HasPriorClaim,
	}, nil
}
