package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"eventgate/internal/models"
)

// renderPDF produces the invoice document. The QR image is embedded from the
// in-memory PNG bytes, never referenced by URL, so the document renders
// without network access.
func renderPDF(d *models.RegistrationDetails, qrPNG []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", d.Registration.Reference), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, "Ticket Invoice")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Reference: %s", d.Registration.Reference))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, d.Event.Title)
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Starts: %s", d.Event.StartsAt.Format("Mon, 02 Jan 2006 15:04")))
	pdf.Ln(6)
	if d.Event.EndsAt != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Ends: %s", d.Event.EndsAt.Format("Mon, 02 Jan 2006 15:04")))
		pdf.Ln(6)
	}
	if d.Event.Venue != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Venue: %s", *d.Event.Venue))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.Cell(0, 6, fmt.Sprintf("Attendee: %s <%s>", d.Registration.AttendeeName(), d.Registration.Email))
	pdf.Ln(10)

	// Line item table: ticket type, unit price, quantity, total.
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(80, 8, "Ticket", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Unit price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	price := d.Ticket.Price.StringFixed(2)
	pdf.CellFormat(80, 8, d.Ticket.Type, "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, price, "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 8, "1", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, price, "1", 1, "R", false, 0, "")
	pdf.Ln(8)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr-"+d.Registration.Reference, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr-"+d.Registration.Reference, pdf.GetX(), pdf.GetY(), 50, 50, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + 54)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 5, "Present this QR code at the entrance for check-in.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}
