package notifier

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

func workOrderFilename(sessionID string) string {
	if sessionID == "" {
		return "work-order.pdf"
	}
	return "work-order-" + sessionID + ".pdf"
}

// renderWorkOrder lays the order out as a printable A4 sheet with a QR code
// linking back to the order page.
func renderWorkOrder(v orderView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; this maps € and accented names
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Work Order "+v.SessionID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Work Order")
	pdf.Ln(14)

	if v.ConfirmationURL != "" {
		qrPNG, err := qrcode.Encode(v.ConfirmationURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("generate qr code: %w", err)
		}
		imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("qr", 160, 10, 35, 35, false, imageOpts, 0, "")
	}

	pdf.SetFont("Arial", "", 11)
	for _, row := range [][2]string{
		{"Order", v.SessionID},
		{"Customer", v.CustomerName},
		{"Email", v.CustomerEmail},
		{"Social", v.SocialPlatform + " - " + v.SocialUsername},
		{"Total", v.Amount},
		{"Files", fmt.Sprintf("%d", v.FileCount)},
	} {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(30, 7, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(110, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	for _, item := range v.Items {
		for _, s := range item.Sections {
			pdf.SetFont("Arial", "B", 13)
			pdf.SetFillColor(240, 240, 240)
			pdf.CellFormat(0, 8, tr(s.Label), "", 1, "L", true, 0, "")

			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 5, tr("Color scheme: "+s.ColorScheme), "", "L", false)
			if s.ShowCustom {
				pdf.MultiCell(0, 5, tr("Custom colors: "+s.CustomColor1+" / "+s.CustomColor2), "", "L", false)
			}
			pdf.MultiCell(0, 5, tr("Comments: "+s.Comments), "", "L", false)
			for _, f := range s.Files {
				pdf.SetTextColor(0, 0, 180)
				pdf.WriteLinkString(5, tr(fmt.Sprintf("  %d. %s", f.Number, f.Name)), f.URL)
				pdf.SetTextColor(0, 0, 0)
				pdf.Ln(5)
			}
			pdf.Ln(4)
		}
		for _, f := range item.Unsectioned {
			pdf.SetTextColor(0, 0, 180)
			pdf.WriteLinkString(5, tr(fmt.Sprintf("  %s: %s", item.ServiceName, f.Name)), f.URL)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
