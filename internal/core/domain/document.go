package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

func ParseRiskTier(raw string) (RiskTier, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	default:
		return "", false
	}
}

// FieldText is an extracted value that may arrive as a JSON string, number or null.
type FieldText string

func (f *FieldText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FieldText(s)
		return nil
	case '{', '[':
		return fmt.Errorf("field text: unexpected %s", string(data[:1]))
	default:
		*f = FieldText(string(data))
		return nil
	}
}

func (f FieldText) String() string {
	return string(f)
}

func (f FieldText) Present() bool {
	return strings.TrimSpace(string(f)) != ""
}

type FraudAssessment struct {
	RiskScore   int      `json:"riskScore"`
	RiskTier    RiskTier `json:"riskTier"`
	RiskFactors []string `json:"riskFactors"`
}

// ExtractedDocument holds fields read from a hospital bill. All fields are optional.
type ExtractedDocument struct {
	Name            FieldText        `json:"name,omitempty"`
	Age             FieldText        `json:"age,omitempty"`
	HospitalName    FieldText        `json:"hospitalName,omitempty"`
	ClaimReason     FieldText        `json:"claimReason,omitempty"`
	BillAmount      FieldText        `json:"billAmount,omitempty"`
	BillDate        FieldText        `json:"billDate,omitempty"`
	DoctorName      FieldText        `json:"doctorName,omitempty"`
	FraudAssessment *FraudAssessment `json:"fraudAssessment,omitempty"`
}

// ParseBillAmount reads an amount as a non-negative whole number of currency units.
// Currency symbols, grouping commas and spaces are ignored and fractions are truncated.
// ok is false for missing, unparseable or negative input, in which case the amount is zero.
func ParseBillAmount(raw string) (amount int64, ok bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',' || r == ' ' || r == '\u00a0' || r == '₹' || r == '$':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "Rs."), "INR")
	if cleaned == "" {
		return 0, false
	}

	if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Amount returns the parsed bill amount; see ParseBillAmount.
func (d ExtractedDocument) Amount() (int64, bool) {
	return ParseBillAmount(string(d.BillAmount))
}
