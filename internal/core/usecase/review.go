package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

// ReviewUseCase triages submitted claims for the admin inbox.
type ReviewUseCase struct{}

func NewReviewUseCase() *ReviewUseCase {
	return &ReviewUseCase{}
}

func (uc *ReviewUseCase) Review(_ context.Context, entry domain.ClaimLedgerEntry) (domain.ReviewPriority, error) {
	if entry.ID == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "review claim", errors.New("claim id is empty"))
	}

	priority := ReviewPriorityFor(entry)
	attrs := []any{
		"claim_id", entry.ID,
		"policy", entry.PolicyNumber,
		"risk_tier", string(entry.Decision.RiskTier),
		"eligible", entry.Decision.Eligible,
		"priority", string(priority),
	}
	if fraud := entry.Document.FraudAssessment; fraud != nil {
		attrs = append(attrs, "fraud_score", fraud.RiskScore)
	}
	if priority == domain.ReviewPriorityHigh {
		slog.Warn("claim_flagged_for_review", attrs...)
	} else {
		slog.Info("claim_queued_for_review", attrs...)
	}
	return priority, nil
}

// ReviewPriorityFor flags high-risk decisions and high-risk upstream fraud assessments.
func ReviewPriorityFor(entry domain.ClaimLedgerEntry) domain.ReviewPriority {
	if entry.Decision.RiskTier == domain.RiskHigh {
		return domain.ReviewPriorityHigh
	}
	if fraud := entry.Document.FraudAssessment; fraud != nil && fraud.RiskTier == domain.RiskHigh {
		return domain.ReviewPriorityHigh
	}
	return domain.ReviewRoutine
}
