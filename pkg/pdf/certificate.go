package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData carries the signer details stamped into the artifact
type CertificateData struct {
	DocumentName  string
	RecipientName string
	EntityName    string
	SignerTitle   string
	TypedSignature string
	SignedAt      time.Time
}

// CertificateGenerator renders signing completion certificates
type CertificateGenerator struct {
	fontFamily string
}

// NewCertificateGenerator creates a certificate generator
func NewCertificateGenerator() *CertificateGenerator {
	return &CertificateGenerator{fontFamily: "Arial"}
}

// Generate renders the signing certificate and returns the PDF bytes
func (g *CertificateGenerator) Generate(data CertificateData) ([]byte, error) {
	if data.RecipientName == "" {
		return nil, fmt.Errorf("recipient name is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont(g.fontFamily, "B", 20)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 14, "Signature Certificate", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontFamily, "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, "This document was electronically signed.", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	rows := [][2]string{
		{"Document", data.DocumentName},
		{"Signed by", data.RecipientName},
		{"On behalf of", data.EntityName},
		{"Title", data.SignerTitle},
		{"Signed at", data.SignedAt.UTC().Format("2006-01-02 15:04:05 MST")},
	}

	pdf.SetTextColor(33, 37, 41)
	for _, row := range rows {
		pdf.SetFont(g.fontFamily, "B", 11)
		pdf.CellFormat(45, 9, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont(g.fontFamily, "", 11)
		pdf.CellFormat(0, 9, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(12)
	pdf.SetFont(g.fontFamily, "I", 16)
	pdf.CellFormat(0, 12, data.TypedSignature, "B", 1, "L", false, 0, "")
	pdf.SetFont(g.fontFamily, "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Typed signature", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
