package extraction

import (
	"math"
	"strings"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

// WireDocument is the extraction backend's JSON shape. The assistant backend accepts
// the same shape in its "extracted" field.
type WireDocument struct {
	Name           domain.FieldText `json:"name,omitempty"`
	Age            domain.FieldText `json:"age,omitempty"`
	Reason         domain.FieldText `json:"reason,omitempty"`
	Hospital       domain.FieldText `json:"hospital,omitempty"`
	Amount         domain.FieldText `json:"amount,omitempty"`
	Date           domain.FieldText `json:"date,omitempty"`
	Doctor         domain.FieldText `json:"doctor,omitempty"`
	FraudDetection *WireFraud       `json:"fraud_detection,omitempty"`
	Error          string           `json:"error,omitempty"`
}

type WireFraud struct {
	FraudScore   float64  `json:"fraud_score"`
	FraudReasons []string `json:"fraud_reasons"`
	RiskLevel    string   `json:"risk_level"`
	IsSuspicious bool     `json:"is_suspicious"`
}

func (w WireDocument) ToDomain() domain.ExtractedDocument {
	doc := domain.ExtractedDocument{
		Name:         w.Name,
		Age:          w.Age,
		HospitalName: w.Hospital,
		ClaimReason:  w.Reason,
		BillAmount:   w.Amount,
		BillDate:     w.Date,
		DoctorName:   w.Doctor,
	}
	if w.FraudDetection != nil {
		tier, ok := domain.ParseRiskTier(w.FraudDetection.RiskLevel)
		if !ok {
			tier = domain.RiskLow
		}
		reasons := w.FraudDetection.FraudReasons
		if reasons == nil {
			reasons = []string{}
		}
		doc.FraudAssessment = &domain.FraudAssessment{
			RiskScore:   clampScore(w.FraudDetection.FraudScore),
			RiskTier:    tier,
			RiskFactors: reasons,
		}
	}
	return doc
}

// FromDomain renders doc in the backend shape.
func FromDomain(doc domain.ExtractedDocument) WireDocument {
	w := WireDocument{
		Name:     doc.Name,
		Age:      doc.Age,
		Reason:   doc.ClaimReason,
		Hospital: doc.HospitalName,
		Amount:   doc.BillAmount,
		Date:     doc.BillDate,
		Doctor:   doc.DoctorName,
	}
	if fa := doc.FraudAssessment; fa != nil {
		w.FraudDetection = &WireFraud{
			FraudScore:   float64(fa.RiskScore),
			FraudReasons: fa.RiskFactors,
			RiskLevel:    string(fa.RiskTier),
			IsSuspicious: fa.RiskTier == domain.RiskHigh,
		}
	}
	return w
}

func clampScore(score float64) int {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

func (w WireDocument) hasError() bool {
	return strings.TrimSpace(w.Error) != ""
}
