package domain

type PolicyType string

const (
	PolicyHealth PolicyType = "Health"
	PolicyLife   PolicyType = "Life"
)

func (t PolicyType) Valid() bool {
	return t == PolicyHealth || t == PolicyLife
}

type BankAccount struct {
	AccountRef    string `json:"accountRef" yaml:"account_ref"`
	HasPriorClaim bool   `json:"hasPriorClaim" yaml:"has_prior_claim"`
}

type Policy struct {
	PolicyNumber         string     `json:"policyNumber" yaml:"policy_number"`
	Type                 PolicyType `json:"type" yaml:"type"`
	CoverageLimit        int64      `json:"coverageLimit" yaml:"coverage_limit"`
	AmountAlreadyClaimed int64      `json:"amountAlreadyClaimed" yaml:"amount_already_claimed"`
}

// RemainingCoverage is the part of the limit not yet claimed.
func (p Policy) RemainingCoverage() int64 {
	return p.CoverageLimit - p.AmountAlreadyClaimed
}

// UserRecord is a directory entry keyed by MobileNumber.
type UserRecord struct {
	MobileNumber string      `json:"mobileNumber" yaml:"mobile_number"`
	FullName     string      `json:"fullName" yaml:"full_name"`
	Age          int         `json:"age" yaml:"age"`
	NationalID   string      `json:"nationalId" yaml:"national_id"`
	BankAccount  BankAccount `json:"bankAccount" yaml:"bank_account"`
	Policy       Policy      `json:"policy" yaml:"policy"`
}

// Profile is the public part of the record carried by a session.
func (u UserRecord) Profile() Profile {
	return Profile{
		MobileNumber: u.MobileNumber,
		FullName:     u.FullName,
		Age:          u.Age,
	}
}
