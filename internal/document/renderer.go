// Package document renders mandate certificates as PDF and caches the bytes
// in Redis.
package document

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"

	"mandate/internal/mandate/models"
)

// LinkBuilder yields the signed verification URL printed as a QR code.
type LinkBuilder interface {
	URL(reference string) string
}

// PdfRenderer turns a mandate into document bytes.
type PdfRenderer struct {
	links  LinkBuilder
	issuer string
}

func NewPdfRenderer(links LinkBuilder, issuer string) *PdfRenderer {
	if issuer == "" {
		issuer = "Mandate Office"
	}
	return &PdfRenderer{links: links, issuer: issuer}
}

const dateLayout = "02/01/2006 15:04 MST"

// Render lays out the certificate. Document dates come from the mandate's
// own timestamps, never the wall clock.
func (r *PdfRenderer) Render(ctx context.Context, m models.Mandate) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	link := r.links.URL(m.ReferenceNumber)
	qr, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode verification qr: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Mandate "+m.ReferenceNumber, true)
	pdf.SetAuthor(r.issuer, true)
	pdf.SetCreator(r.issuer, true)
	pdf.SetCreationDate(documentDate(m))
	pdf.SetModificationDate(documentDate(m))
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr("CERTIFICATE OF MANDATE"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(r.issuer), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if !m.IsApproved() {
		pdf.SetTextColor(180, 30, 30)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr("PROVISIONAL - awaiting final approval"), "1", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(4)
	}

	section := func(title string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(title), "B", 1, "L", false, 0, "")
		pdf.Ln(1)
	}
	row := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 7, tr(value), "", "L", false)
	}

	section("Holder")
	row("Name", m.Submitter.FullName())
	row("Function", m.Submitter.Function)
	row("Constituency", m.Submitter.Constituency)

	section("Request")
	row("Reference number", m.ReferenceNumber)
	row("Status", m.StatusLabel())
	row("Submitted", m.CreatedAt.UTC().Format(dateLayout))
	if m.AdminApprovedAt != nil {
		row("Admin approval", m.AdminApprovedAt.UTC().Format(dateLayout))
	}
	if m.SuperAdminApprovedAt != nil {
		row("Final approval", m.SuperAdminApprovedAt.UTC().Format(dateLayout))
	}

	pdf.RegisterImageOptionsReader("verification-qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qr))
	pdf.ImageOptions("verification-qr", 150, 225, 40, 40, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetXY(20, 235)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(120, 4, tr("Scan the code or open the link below to check this certificate:\n"+link), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render mandate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func documentDate(m models.Mandate) time.Time {
	switch {
	case m.SuperAdminApprovedAt != nil:
		return m.SuperAdminApprovedAt.UTC()
	case m.AdminApprovedAt != nil:
		return m.AdminApprovedAt.UTC()
	default:
		return m.CreatedAt.UTC()
	}
}
