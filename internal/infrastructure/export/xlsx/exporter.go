package xlsx

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

const (
	sheetName   = "Claims"
	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []string{
	"Claim ID",
	"Submitted At",
	"Mobile Number",
	"Policy Number",
	"Patient Name",
	"Hospital",
	"Treatment Reason",
	"Bill Amount",
	"Parsed Amount",
	"Identity Verified",
	"Eligible",
	"Risk Tier",
	"Reason",
	"Fraud Score",
	"Fraud Risk",
}

var columnWidths = []float64{38, 20, 15, 14, 24, 28, 28, 14, 14, 10, 10, 10, 40, 10, 10}

type Exporter struct{}

func NewExporter() Exporter {
	return Exporter{}
}

func (Exporter) ContentType() string {
	return contentType
}

// Export writes one row per entry under a frozen, styled header row.
func (Exporter) Export(entries []domain.ClaimLedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		row := rowFor(entry)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write claim %s: %w", entry.ID, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rowFor(entry domain.ClaimLedgerEntry) []any {
	doc, decision := entry.Document, entry.Decision
	var parsed any
	if decision.AmountParsed {
		parsed = decision.BillAmount
	}
	var fraudScore, fraudTier any
	if fa := doc.FraudAssessment; fa != nil {
		fraudScore, fraudTier = fa.RiskScore, string(fa.RiskTier)
	}
	return []any{
		entry.ID,
		entry.SubmittedAt.UTC().Format(time.DateTime),
		entry.MobileNumber,
		entry.PolicyNumber,
		doc.Name.String(),
		doc.HospitalName.String(),
		doc.ClaimReason.String(),
		doc.BillAmount.String(),
		parsed,
		decision.IdentityVerified,
		decision.Eligible,
		string(decision.RiskTier),
		decision.Reason,
		fraudScore,
		fraudTier,
	}
}
