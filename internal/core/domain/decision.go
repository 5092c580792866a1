package domain

type EligibilityDecision struct {
	IdentityVerified  bool     `json:"identityVerified"`
	Eligible          bool     `json:"eligible"`
	RiskTier          RiskTier `json:"riskTier"`
	Reason            string   `json:"reason"`
	BillAmount        int64    `json:"billAmount"`
	RemainingCoverage int64    `json:"remainingCoverage"`
	AmountParsed      bool     `json:"amountParsed"`
}

// VerificationStage names the gate that rejected a document.
type VerificationStage string

const (
	StagePassed       VerificationStage = "passed"
	StageNoData       VerificationStage = "no_data"
	StageUserNotFound VerificationStage = "user_not_found"
	StageIdentity     VerificationStage = "identity_mismatch"
	StagePartial      VerificationStage = "partial_information"
	StageQuality      VerificationStage = "quality_issues"
)

// VerificationReport is the itemized outcome of the document quality gate.
type VerificationReport struct {
	Verified       bool              `json:"verified"`
	Stage          VerificationStage `json:"stage"`
	Message        string            `json:"message"`
	ExtractedCount int               `json:"extractedCount"`
	RequiredCount  int               `json:"requiredCount"`
	MissingFields  []string          `json:"missingFields,omitempty"`
	QualityIssues  []string          `json:"qualityIssues,omitempty"`
	ExpectedName   string            `json:"expectedName,omitempty"`
	ExtractedName  string            `json:"extractedName,omitempty"`
}

type IdentityCheck struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
}

// ClaimAssessment is the combined result of extracting and gating one document.
type ClaimAssessment struct {
	Document     ExtractedDocument    `json:"document"`
	Verification VerificationReport   `json:"verification"`
	Decision     *EligibilityDecision `json:"decision,omitempty"`
}
