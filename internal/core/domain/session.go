package domain

import "time"

type Profile struct {
	MobileNumber string `json:"mobileNumber"`
	FullName     string `json:"fullName"`
	Age          int    `json:"age"`
}

type Session struct {
	ID        string    `json:"id"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// LoginResult is returned to the client after successful authentication.
type LoginResult struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}

type Dashboard struct {
	Profile           Profile `json:"profile"`
	Policy            Policy  `json:"policy"`
	RemainingCoverage int64   `json:"remainingCoverage"`
	BankAccountLinked bool    `json:"bankAccountLinked"`
	HasPriorClaim     bool    `json:"hasPriorClaim"`
}
