package httpadapter

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/kirillkom/claimsense/internal/config"
	"github.com/kirillkom/claimsense/internal/core/domain"
)

const testToken = "tok-valid"

var testSession = domain.Session{
	ID: "sess-1",
	Profile: domain.Profile{
		MobileNumber: "9876543210",
		FullName:     "Aarav Sharma",
		Age:          34,
	},
	CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	ExpiresAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
}

type authFake struct {
	loginErr  error
	loggedOut []string
	session   *domain.Session
}

func (f *authFake) Login(_ context.Context, mobileNumber, code string) (*domain.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if code != "2222" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("invalid one-time code"))
	}
	s := testSession
	s.Profile.MobileNumber = mobileNumber
	return &domain.LoginResult{Token: testToken, Session: s}, nil
}

func (f *authFake) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func (f *authFake) Resolve(_ context.Context, token string) (*domain.Session, error) {
	if token != testToken {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", errors.New("session expired or unknown"))
	}
	s := testSession
	if f.session != nil {
		s = *f.session
	}
	return &s, nil
}

func (f *authFake) Dashboard(_ context.Context, session domain.Session) (*domain.Dashboard, error) {
	return &domain.Dashboard{
		Profile:           session.Profile,
		Policy:            domain.Policy{PolicyNumber: "POL-1", Type: domain.PolicyHealth, CoverageLimit: 500000, AmountAlreadyClaimed: 100000},
		RemainingCoverage: 400000,
		BankAccountLinked: true,
	}, nil
}

type claimsFake struct {
	processErr  error
	assessment  *domain.ClaimAssessment
	processed   int
	uploadBytes int
	submitted   []domain.ClaimSubmission
	claims      []domain.ClaimLedgerEntry
}

func (f *claimsFake) ProcessDocument(_ context.Context, _ domain.Session, _, _ string, body io.Reader) (*domain.ClaimAssessment, error) {
	f.processed++
	data, _ := io.ReadAll(body)
	f.uploadBytes = len(data)
	if f.processErr != nil {
		return nil, f.processErr
	}
	if f.assessment != nil {
		return f.assessment, nil
	}
	return &domain.ClaimAssessment{
		Verification: domain.VerificationReport{Verified: true, Stage: domain.StagePassed},
		Decision:     &domain.EligibilityDecision{IdentityVerified: true, Eligible: true, RiskTier: domain.RiskLow},
	}, nil
}

func (f *claimsFake) VerifyNationalID(_ context.Context, _ domain.Session, nationalID string) (*domain.IdentityCheck, error) {
	if nationalID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "verify national id", errors.New("national id is required"))
	}
	return &domain.IdentityCheck{Verified: nationalID == "123412341234"}, nil
}

func (f *claimsFake) Evaluate(_ context.Context, _ domain.Session, _ domain.ClaimSubmission) (*domain.EligibilityDecision, error) {
	return &domain.EligibilityDecision{IdentityVerified: true, Eligible: false, RiskTier: domain.RiskMedium, Reason: "Claim exceeds remaining coverage."}, nil
}

func (f *claimsFake) Submit(_ context.Context, session domain.Session, submission domain.ClaimSubmission) (*domain.ClaimLedgerEntry, error) {
	f.submitted = append(f.submitted, submission)
	entry := domain.ClaimLedgerEntry{
		ID:           "claim-1",
		MobileNumber: session.Profile.MobileNumber,
		Document:     submission.Document,
		SubmittedAt:  time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC),
	}
	f.claims = append(f.claims, entry)
	return &entry, nil
}

func (f *claimsFake) ListClaims(context.Context, domain.Session) ([]domain.ClaimLedgerEntry, error) {
	return f.claims, nil
}

type assistantFake struct {
	reply domain.AssistantReply
	got   []domain.AssistantRequest
}

func (f *assistantFake) Reply(_ context.Context, req domain.AssistantRequest) (*domain.AssistantReply, error) {
	f.got = append(f.got, req)
	reply := f.reply
	return &reply, nil
}

type exporterFake struct {
	exported int
}

func (f *exporterFake) Export(entries []domain.ClaimLedgerEntry) ([]byte, error) {
	f.exported = len(entries)
	return []byte("xlsx"), nil
}

func (f *exporterFake) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type testRouter struct {
	auth      *authFake
	claims    *claimsFake
	assistant *assistantFake
	exporter  *exporterFake
}

func newTestRouter(cfg config.Config) (*Router, *testRouter) {
	deps := &testRouter{
		auth:      &authFake{},
		claims:    &claimsFake{},
		assistant: &assistantFake{reply: domain.AssistantReply{Reply: "ok", Language: domain.LanguageEnglish}},
		exporter:  &exporterFake{},
	}
	rt := NewRouter(cfg, Dependencies{
		Auth:      deps.auth,
		Claims:    deps.claims,
		Assistant: deps.assistant,
		Exporter:  deps.exporter,
	}).WithRevealPacer(nil)
	return rt, deps
}
