package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

func newAuthForTest() (*AuthUseCase, *sessionStoreFake) {
	store := newSessionStoreFake()
	uc := NewAuthUseCase(newDirectoryFake(), verifierFake{code: "2222"}, store, tokenFake{}, time.Hour)
	return uc, store
}

func TestLoginSuccess(t *testing.T) {
	uc, store := newAuthForTest()

	result, err := uc.Login(context.Background(), "9028833979", "2222")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Session.Profile.FullName != "Vandan Dalvi" || result.Session.Profile.Age != 21 {
		t.Fatalf("unexpected profile: %+v", result.Session.Profile)
	}
	if !strings.HasPrefix(result.Token, "tok-") {
		t.Fatalf("unexpected token %q", result.Token)
	}
	if _, ok := store.sessions[result.Session.ID]; !ok {
		t.Fatalf("session was not stored")
	}
	if got := result.Session.ExpiresAt.Sub(result.Session.CreatedAt); got != time.Hour {
		t.Fatalf("unexpected ttl %s", got)
	}
}

func TestLoginValidation(t *testing.T) {
	uc, _ := newAuthForTest()

	tests := []struct {
		name   string
		mobile string
		code   string
		kind   error
		reason string
	}{
		{name: "short mobile", mobile: "90288", code: "2222", kind: domain.ErrInvalidInput},
		{name: "letters in mobile", mobile: "90288339ab", code: "2222", kind: domain.ErrInvalidInput},
		{name: "long code", mobile: "9028833979", code: "22222", kind: domain.ErrInvalidInput},
		{name: "wrong code", mobile: "9028833979", code: "1111", kind: domain.ErrUnauthorized, reason: "invalid one-time code"},
		{name: "unknown mobile", mobile: "9000000000", code: "2222", kind: domain.ErrUnauthorized, reason: "mobile number not registered"},
		{name: "unknown mobile wrong code reports code", mobile: "9000000000", code: "1111", kind: domain.ErrUnauthorized, reason: "invalid one-time code"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Login(context.Background(), tc.mobile, tc.code)
			if !domain.IsKind(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if tc.reason != "" && !strings.Contains(err.Error(), tc.reason) {
				t.Fatalf("expected %q in %v", tc.reason, err)
			}
		})
	}
}

func TestLoginTokenFailureRemovesSession(t *testing.T) {
	store := newSessionStoreFake()
	uc := NewAuthUseCase(newDirectoryFake(), verifierFake{code: "2222"}, store, tokenFake{issueErr: errors.New("boom")}, time.Hour)

	if _, err := uc.Login(context.Background(), "9028833979", "2222"); err == nil {
		t.Fatalf("expected error")
	}
	if len(store.sessions) != 0 {
		t.Fatalf("expected no leftover session, got %d", len(store.sessions))
	}
}

func TestResolveAndLogout(t *testing.T) {
	uc, _ := newAuthForTest()
	ctx := context.Background()

	result, err := uc.Login(ctx, "9123456780", "2222")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	session, err := uc.Resolve(ctx, result.Token)
	if err != nil || session.Profile.MobileNumber != "9123456780" {
		t.Fatalf("Resolve() = %+v, %v", session, err)
	}

	if err := uc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := uc.Resolve(ctx, result.Token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
	if _, err := uc.Resolve(ctx, "garbage"); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for malformed token, got %v", err)
	}
}

func TestResolveExpiredSession(t *testing.T) {
	uc, store := newAuthForTest()
	ctx := context.Background()

	result, err := uc.Login(ctx, "9028833979", "2222")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	uc.now = func() time.Time { return result.Session.ExpiresAt.Add(time.Second) }

	if _, err := uc.Resolve(ctx, result.Token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired session, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("expected expired session to be removed")
	}
}

func TestDashboard(t *testing.T) {
	uc, _ := newAuthForTest()
	session := sessionFor(testUsers()[1])

	dash, err := uc.Dashboard(context.Background(), session)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if dash.RemainingCoverage != 1000000 || !dash.BankAccountLinked || !dash.HasPriorClaim {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}
	if dash.Policy.Type != domain.PolicyLife {
		t.Fatalf("unexpected policy type %s", dash.Policy.Type)
	}
}
