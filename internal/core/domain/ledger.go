package domain

import "time"

type ClaimLedgerEntry struct {
	ID           string              `json:"id"`
	MobileNumber string              `json:"mobileNumber"`
	PolicyNumber string              `json:"policyNumber"`
	Document     ExtractedDocument   `json:"document"`
	Decision     EligibilityDecision `json:"decision"`
	SubmittedAt  time.Time           `json:"submittedAt"`
}

type ClaimSubmission struct {
	Document   ExtractedDocument `json:"document"`
	NationalID *string           `json:"nationalId,omitempty"`
}

type ReviewPriority string

const (
	ReviewRoutine      ReviewPriority = "routine"
	ReviewPriorityHigh ReviewPriority = "priority"
)
