package docgen

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tamecovita/reservations/internal/models"
	"github.com/tamecovita/reservations/internal/pricing"
)

var ErrTemplateMissing = errors.New("document template missing")

var unsafeFilenameRe = regexp.MustCompile(`[<>:"/\\|?*]`)

// Exporter writes the customer request, receipt and invoice documents of
// a reservation. Files are named by receipt number.
type Exporter struct {
	RequestsDir     string
	ExportsDir      string
	ReceiptTemplate string
	InvoiceTemplate string
	Now             func() time.Time
}

func (e *Exporter) today() string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return now().Format("2006-01-02")
}

// SafeFilename replaces characters that are not allowed in file names.
func SafeFilename(name string) string {
	return unsafeFilenameRe.ReplaceAllString(name, "_")
}

// RequestFields lists the customer request lines in document order.
func RequestFields(r models.Reservation, today string) [][2]string {
	return [][2]string{
		{"Receipt No", r.ReceiptNo},
		{"Date", today},
		{"Guest Name", r.GuestName},
		{"Contact/Email", r.Contact},
		{"Apartment Type", r.ApartmentType},
		{"Place / Location", r.Location},
		{"Check-In Date", r.CheckIn},
		{"Check-Out Date", r.CheckOut},
		{"Number of Nights", r.Nights.String()},
		{"Rate per Night", r.Rate.Fixed()},
		{"VAT", r.VAT.Fixed()},
		{"Total Amount", r.Total.Fixed()},
		{"Amount Paid", r.AmountPaid.Fixed()},
		{"Payment Method", r.PaymentMethod},
		{"Payment Date", r.PaymentDate},
		{"Balance", r.Balance.Fixed()},
	}
}

func ReceiptValues(r models.Reservation, today string) map[string]string {
	return map[string]string{
		"GUEST_NAME":     r.GuestName,
		"CONTACT":        r.Contact,
		"DATE":           today,
		"RECEIPT_NO":     r.ReceiptNo,
		"BOOKING_REF":    r.ReceiptNo,
		"APARTMENT_TYPE": r.ApartmentType,
		"LOCATION":       r.Location,
		"CHECKIN":        r.CheckIn,
		"CHECKOUT":       r.CheckOut,
		"NIGHTS":         r.Nights.String(),
		"RATE":           r.Rate.Fixed(),
		"VAT":            r.VAT.Fixed(),
		"TOTAL":          r.Total.Fixed(),
		"PAID":           r.AmountPaid.Fixed(),
		"METHOD":         r.PaymentMethod,
		"PAYMENT_DATE":   r.PaymentDate,
		"BALANCE":        r.Balance.Fixed(),
	}
}

// InvoiceValues recomputes SUBTOTAL from rate and nights rather than
// trusting the stored VAT and total.
func InvoiceValues(r models.Reservation, today string) map[string]string {
	return map[string]string{
		"DATE":       today,
		"INVOICE_NO": r.ReceiptNo,
		"GUEST_NAME": r.GuestName,
		"APARTMENT":  r.ApartmentType,
		"UNIT_PRICE": r.Rate.Fixed(),
		"DAYS":       r.Nights.String(),
		"SUBTOTAL":   pricing.Subtotal(r.Rate.Float64(), r.Nights.Float64()),
		"VAT":        r.VAT.Fixed(),
		"TOTAL_DUE":  r.Total.Fixed(),
	}
}

// CustomerRequest writes a fresh document listing every field of r.
func (e *Exporter) CustomerRequest(r models.Reservation) (string, error) {
	doc := NewDocument().Heading("Reservation Request")
	for _, f := range RequestFields(r, e.today()) {
		doc.Paragraph(f[0] + ": " + f[1])
	}
	data, err := doc.Bytes()
	if err != nil {
		return "", err
	}
	return writeAtomic(e.RequestsDir, "CustomerRequest_"+SafeFilename(r.ReceiptNo)+".docx", data)
}

func (e *Exporter) Receipt(r models.Reservation) (string, error) {
	return e.fromTemplate(e.ReceiptTemplate, e.ExportsDir, "Receipt_"+SafeFilename(r.ReceiptNo)+".docx", ReceiptValues(r, e.today()))
}

func (e *Exporter) Invoice(r models.Reservation) (string, error) {
	return e.fromTemplate(e.InvoiceTemplate, e.ExportsDir, "Invoice_"+SafeFilename(r.ReceiptNo)+".docx", InvoiceValues(r, e.today()))
}

func (e *Exporter) fromTemplate(template, dir, name string, values map[string]string) (string, error) {
	src, err := os.ReadFile(template)
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.Mark(errors.Wrapf(err, "template %s", template), ErrTemplateMissing)
	}
	if err != nil {
		return "", errors.Wrapf(err, "read template %s", template)
	}

	data, err := Fill(src, values)
	if err != nil {
		return "", errors.Wrapf(err, "fill %s", template)
	}
	return writeAtomic(dir, name, data)
}

func writeAtomic(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".tmp-*.docx")
	if err != nil {
		return "", errors.Wrap(err, "create temp document")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrapf(err, "replace %s", path)
	}
	return path, nil
}
