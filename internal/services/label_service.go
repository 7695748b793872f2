package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"intake-backend/internal/grouping"
	"intake-backend/internal/models"

	"github.com/jung-kurt/gofpdf/v2"
)

// LabelService renders PDF artifacts: a box label for one print payload and
// a daily intake summary over the full record list.
type LabelService struct {
	Records *RecordService
}

func NewLabelService(records *RecordService) *LabelService {
	return &LabelService{Records: records}
}

// GenerateLabelPDF renders one box label. The payload is either a single
// record or the aggregate of a mixed-box group; the layout is identical.
func (s *LabelService) GenerateLabelPDF(payload *models.PrintPayload) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A6", "")
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(132, 12, payload.SKU, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(66, 8, fmt.Sprintf("Quantity: %d", payload.Quantity), "", 0, "L", false, 0, "")
	pdf.CellFormat(66, 8, fmt.Sprintf("Boxes: %d", payload.Boxes), "", 1, "L", false, 0, "")
	pdf.CellFormat(66, 8, fmt.Sprintf("Country: %s", payload.Country), "", 0, "L", false, 0, "")
	pdf.CellFormat(66, 8, fmt.Sprintf("Packer: %s", payload.Packer), "", 1, "L", false, 0, "")
	pdf.CellFormat(132, 8, fmt.Sprintf("Operator: %s", payload.Operator), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// The printer collaborator renders the actual barcode; the PDF carries
	// the value in a machine-checkable monospace line.
	pdf.SetFont("Courier", "B", 11)
	pdf.CellFormat(132, 8, payload.Barcode, "1", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render label pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateIntakeSummaryPDF renders the current record list grouped the way
// the display shows it: whole-box rows as-is, mixed boxes as one spanning
// row per group with member lines beneath.
func (s *LabelService) GenerateIntakeSummaryPDF(ctx context.Context) ([]byte, error) {
	records, err := s.Records.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	rows := grouping.Project(records)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Warehouse Intake - Record Summary", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", time.Now().Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(55, 7, "SKU", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Boxes", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Country", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Group", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		rec := row.Record

		groupCell := ""
		if rec.MixBoxGroupKey != nil {
			key := *rec.MixBoxGroupKey
			if len(key) > 8 {
				key = key[:8]
			}
			if row.IsGroupAnchor {
				groupCell = fmt.Sprintf("%s (%d)", key, row.RowSpan)
			} else {
				groupCell = key
			}
		}

		if row.IsGroupAnchor {
			pdf.SetFillColor(240, 240, 240)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		sku := rec.SKU
		if len(sku) > 28 {
			sku = sku[:25] + "..."
		}
		pdf.CellFormat(55, 6, sku, "1", 0, "L", row.IsGroupAnchor, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", rec.TotalQuantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", rec.TotalBoxes), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, rec.BoxType, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, rec.Country, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, rec.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, groupCell, "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render summary pdf: %w", err)
	}
	return buf.Bytes(), nil
}
