package usecase

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

const (
	// highAmountThreshold is in the same currency units as policy coverage.
	highAmountThreshold int64 = 20000

	requiredFieldCount = 5
	minimumFieldCount  = 3
)

const (
	ReasonUserNotFound       = "user not found"
	ReasonNameMissing        = "name not found in document."
	ReasonNameMismatch       = "name in document does not match the logged-in user."
	ReasonNationalIDMismatch = "national ID verification failed."
	ReasonNoBankAccount      = "no bank account linked to this national ID."
	ReasonNationalIDVerified = "national ID verified and bank account linked."
	ReasonExceedsCoverage    = "claim exceeds remaining coverage."
	ReasonHighAmount         = "high amount but within coverage."
	ReasonEligible           = "eligible."
)

// NormalizeName lower-cases s and drops every whitespace rune.
func NormalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func NamesMatch(extracted, recorded string) bool {
	return NormalizeName(extracted) == NormalizeName(recorded)
}

// NormalizeNationalID drops whitespace and hyphens and nothing else.
func NormalizeNationalID(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func NationalIDsMatch(input, recorded string) bool {
	return NormalizeNationalID(input) == NormalizeNationalID(recorded)
}

// Evaluate decides identity and eligibility for one document. record must be the
// directory entry for the session's mobile number; a nil or foreign record fails identity.
func Evaluate(session domain.Session, doc domain.ExtractedDocument, record *domain.UserRecord) domain.EligibilityDecision {
	if record == nil || record.MobileNumber != session.Profile.MobileNumber {
		return identityFailure(ReasonUserNotFound)
	}
	if !doc.Name.Present() {
		return identityFailure(ReasonNameMissing)
	}
	if !NamesMatch(doc.Name.String(), record.FullName) {
		return identityFailure(ReasonNameMismatch)
	}
	return decideEligibility(record.Policy, doc)
}

// EvaluateWithNationalID runs the national ID check ahead of Evaluate.
func EvaluateWithNationalID(session domain.Session, doc domain.ExtractedDocument, record *domain.UserRecord, nationalID string) domain.EligibilityDecision {
	if record != nil && record.MobileNumber == session.Profile.MobileNumber {
		if check := VerifyNationalID(record, nationalID); !check.Verified {
			return identityFailure(check.Reason)
		}
	}
	return Evaluate(session, doc, record)
}

// EvaluateClaim is the decision recorded for a claim. An empty document is reported
// as such; otherwise identity failures win, then the gates of VerifyDocument, then the
// amount rules. A document that fails a gate is never eligible and the gate message
// becomes the reason.
func EvaluateClaim(session domain.Session, doc domain.ExtractedDocument, record *domain.UserRecord, nationalID *string) domain.EligibilityDecision {
	var decision domain.EligibilityDecision
	if nationalID != nil {
		decision = EvaluateWithNationalID(session, doc, record, *nationalID)
	} else {
		decision = Evaluate(session, doc, record)
	}

	report := VerifyDocument(session, doc, record)
	if !decision.IdentityVerified && report.Stage != domain.StageNoData {
		return decision
	}
	if !report.Verified {
		decision.Eligible = false
		decision.RiskTier = domain.RiskHigh
		decision.Reason = report.Message
	}
	return decision
}

// VerifyNationalID compares a claimant-entered ID with the record and requires a linked bank account.
func VerifyNationalID(record *domain.UserRecord, nationalID string) domain.IdentityCheck {
	if record == nil {
		return domain.IdentityCheck{Reason: ReasonUserNotFound}
	}
	if !NationalIDsMatch(nationalID, record.NationalID) {
		return domain.IdentityCheck{Reason: ReasonNationalIDMismatch}
	}
	if strings.TrimSpace(record.BankAccount.AccountRef) == "" {
		return domain.IdentityCheck{Reason: ReasonNoBankAccount}
	}
	return domain.IdentityCheck{Verified: true, Reason: ReasonNationalIDVerified}
}

// decideEligibility is an if/else-if chain: the first matching rule wins.
func decideEligibility(policy domain.Policy, doc domain.ExtractedDocument) domain.EligibilityDecision {
	remaining := policy.RemainingCoverage()
	amount, parsed := doc.Amount()

	decision := domain.EligibilityDecision{
		IdentityVerified:  true,
		BillAmount:        amount,
		RemainingCoverage: remaining,
		AmountParsed:      parsed,
	}
	switch {
	case amount > remaining:
		decision.Eligible = false
		decision.RiskTier = domain.RiskHigh
		decision.Reason = ReasonExceedsCoverage
	case amount > highAmountThreshold:
		decision.Eligible = true
		decision.RiskTier = domain.RiskMedium
		decision.Reason = ReasonHighAmount
	default:
		decision.Eligible = true
		decision.RiskTier = domain.RiskLow
		decision.Reason = ReasonEligible
	}
	return decision
}

func identityFailure(reason string) domain.EligibilityDecision {
	return domain.EligibilityDecision{
		IdentityVerified: false,
		Eligible:         false,
		RiskTier:         domain.RiskHigh,
		Reason:           reason,
	}
}

type documentField struct {
	label string
	value domain.FieldText
}

func requiredFields(doc domain.ExtractedDocument) []documentField {
	return []documentField{
		{label: "Patient Name", value: doc.Name},
		{label: "Age", value: doc.Age},
		{label: "Hospital Name", value: doc.HospitalName},
		{label: "Amount", value: doc.BillAmount},
		{label: "Treatment Reason", value: doc.ClaimReason},
	}
}

// VerifyDocument applies the document gates in order: nothing extracted, identity,
// partial information, then field quality. The first failing gate is reported.
func VerifyDocument(session domain.Session, doc domain.ExtractedDocument, record *domain.UserRecord) domain.VerificationReport {
	fields := requiredFields(doc)
	missing := make([]string, 0, len(fields))
	for _, field := range fields {
		if !field.value.Present() {
			missing = append(missing, field.label)
		}
	}
	report := domain.VerificationReport{
		ExtractedCount: len(fields) - len(missing),
		RequiredCount:  requiredFieldCount,
		ExtractedName:  strings.TrimSpace(doc.Name.String()),
	}

	if report.ExtractedCount == 0 {
		report.Stage = domain.StageNoData
		report.Message = "No relevant information extracted. Upload a clear image of a hospital bill or medical document."
		return report
	}

	if record == nil || record.MobileNumber != session.Profile.MobileNumber {
		report.Stage = domain.StageUserNotFound
		report.Message = "Verification failed: " + ReasonUserNotFound + "."
		return report
	}
	report.ExpectedName = record.FullName
	if !doc.Name.Present() {
		report.Stage = domain.StageIdentity
		report.Message = "Name verification failed: " + ReasonNameMissing
		return report
	}
	if !NamesMatch(doc.Name.String(), record.FullName) {
		report.Stage = domain.StageIdentity
		report.Message = fmt.Sprintf(
			"Name verification failed: extracted name %q does not match logged-in user %q. This document appears to belong to a different person.",
			report.ExtractedName, record.FullName,
		)
		return report
	}

	if report.ExtractedCount < minimumFieldCount {
		report.Stage = domain.StagePartial
		report.MissingFields = missing
		report.Message = fmt.Sprintf(
			"Partial information extracted (%d/%d fields). Missing: %s.",
			report.ExtractedCount, requiredFieldCount, strings.Join(missing, ", "),
		)
		return report
	}

	if issues := qualityIssues(doc); len(issues) > 0 {
		report.Stage = domain.StageQuality
		report.MissingFields = missing
		report.QualityIssues = issues
		report.Message = "Document quality issues detected: " + strings.Join(issues, "; ") + "."
		return report
	}

	report.Verified = true
	report.Stage = domain.StagePassed
	report.MissingFields = missing
	report.Message = "Verification successful."
	return report
}

func qualityIssues(doc domain.ExtractedDocument) []string {
	var issues []string
	if utf8.RuneCountInString(strings.TrimSpace(doc.Name.String())) < 2 {
		issues = append(issues, "patient name is missing or unclear")
	}
	if amount, ok := doc.Amount(); !ok || amount <= 0 {
		issues = append(issues, "bill amount is missing or invalid")
	}
	if utf8.RuneCountInString(strings.TrimSpace(doc.HospitalName.String())) < 3 {
		issues = append(issues, "hospital name is missing or unclear")
	}
	return issues
}
