package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

func testUsers() []domain.UserRecord {
	return []domain.UserRecord{
		{
			MobileNumber: "9028833979",
			FullName:     "Vandan Dalvi",
			Age:          21,
			NationalID:   "1234-5678-9012",
			BankAccount:  domain.BankAccount{AccountRef: "XXXX-1234"},
			Policy: domain.Policy{
				PolicyNumber:         "POL123456",
				Type:                 domain.PolicyHealth,
				CoverageLimit:        10000000,
				AmountAlreadyClaimed: 200000,
			},
		},
		{
			MobileNumber: "9123456780",
			FullName:     "Shravani Rangnekar",
			Age:          21,
			NationalID:   "5678-1234-9012",
			BankAccount:  domain.BankAccount{AccountRef: "XXXX-5678", HasPriorClaim: true},
			Policy: domain.Policy{
				PolicyNumber:         "POL987654",
				Type:                 domain.PolicyLife,
				CoverageLimit:        2000000,
				AmountAlreadyClaimed: 1000000,
			},
		},
	}
}

func sessionFor(record domain.UserRecord) domain.Session {
	return domain.Session{ID: "sess-" + record.MobileNumber, Profile: record.Profile()}
}

type directoryFake struct {
	users []domain.UserRecord
	err   error
}

func newDirectoryFake() *directoryFake {
	return &directoryFake{users: testUsers()}
}

func (f *directoryFake) Lookup(_ context.Context, mobile string) (*domain.UserRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.MobileNumber == mobile {
			copyUser := u
			return &copyUser, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "lookup user", errors.New(mobile))
}

func (f *directoryFake) List(context.Context) ([]domain.UserRecord, error) {
	return append([]domain.UserRecord(nil), f.users...), f.err
}

type verifierFake struct {
	code string
}

func (f verifierFake) VerifyCode(_ context.Context, _ string, code string) bool {
	return code == f.code
}

type sessionStoreFake struct {
	mu        sync.Mutex
	sessions  map[string]domain.Session
	createErr error
}

func newSessionStoreFake() *sessionStoreFake {
	return &sessionStoreFake{sessions: map[string]domain.Session{}}
}

func (f *sessionStoreFake) Create(_ context.Context, s domain.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return nil
}

func (f *sessionStoreFake) Get(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get session", errors.New(id))
	}
	return &s, nil
}

func (f *sessionStoreFake) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

// tokenFake uses the session id as the token.
type tokenFake struct {
	issueErr error
}

func (f tokenFake) Issue(s domain.Session) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return "tok-" + s.ID, nil
}

func (f tokenFake) Parse(token string) (string, error) {
	if len(token) < 4 || token[:4] != "tok-" {
		return "", errors.New("malformed token")
	}
	return token[4:], nil
}

type extractorFake struct {
	doc      *domain.ExtractedDocument
	err      error
	calls    int
	filename string
}

func (f *extractorFake) Extract(_ context.Context, filename, _ string, body io.Reader) (*domain.ExtractedDocument, error) {
	f.calls++
	f.filename = filename
	_, _ = io.Copy(io.Discard, body)
	if f.err != nil {
		return nil, f.err
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

type ledgerFake struct {
	entries   []domain.ClaimLedgerEntry
	appendErr error
}

func (f *ledgerFake) Append(_ context.Context, entry domain.ClaimLedgerEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *ledgerFake) List(context.Context) ([]domain.ClaimLedgerEntry, error) {
	return append([]domain.ClaimLedgerEntry(nil), f.entries...), nil
}

type publisherFake struct {
	published []domain.ClaimLedgerEntry
	err       error
}

func (f *publisherFake) PublishClaimSubmitted(_ context.Context, entry domain.ClaimLedgerEntry) error {
	f.published = append(f.published, entry)
	return f.err
}

type assistantClientFake struct {
	reply string
	err   error
	last  domain.AssistantRequest
}

func (f *assistantClientFake) Chat(_ context.Context, req domain.AssistantRequest) (string, error) {
	f.last = req
	return f.reply, f.err
}
