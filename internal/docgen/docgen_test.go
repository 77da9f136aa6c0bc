package docgen

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamecovita/reservations/internal/models"
)

func build(t *testing.T, d *Document) []byte {
	t.Helper()
	data, err := d.Bytes()
	require.NoError(t, err)
	return data
}

func text(t *testing.T, docx []byte) string {
	t.Helper()
	s, err := PlainText(docx)
	require.NoError(t, err)
	return s
}

func TestFill(t *testing.T) {
	values := map[string]string{"GUEST_NAME": "Ada", "TOTAL": "150.00", "EXTRA": "ignored"}

	t.Run("body and table", func(t *testing.T) {
		tmpl := build(t, NewDocument().
			Heading("Receipt for {GUEST_NAME}").
			Paragraph("Total: {TOTAL}").
			Paragraph("Keep {UNUSED} as is").
			table([][]string{{"Guest", "{GUEST_NAME}"}, {"Total", "{TOTAL}"}}))

		out, err := Fill(tmpl, values)
		require.NoError(t, err)

		got := text(t, out)
		assert.Contains(t, got, "Receipt for Ada")
		assert.Contains(t, got, "Total: 150.00")
		assert.Contains(t, got, "Keep {UNUSED} as is")
		assert.NotContains(t, got, "{GUEST_NAME}")
		assert.NotContains(t, got, "{TOTAL}")
		assert.NotContains(t, got, "ignored")
		assert.Equal(t, 2, strings.Count(got, "Ada"))
	})

	t.Run("placeholder split across runs", func(t *testing.T) {
		tmpl := build(t, NewDocument().Paragraph("Dear {GUEST", "_NAME}, ", "thanks"))

		out, err := Fill(tmpl, values)
		require.NoError(t, err)
		assert.Equal(t, "Dear Ada, thanks", text(t, out))
	})

	t.Run("values are escaped and not re-substituted", func(t *testing.T) {
		tmpl := build(t, NewDocument().Paragraph("{GUEST_NAME} {TOTAL}"))

		out, err := Fill(tmpl, map[string]string{"GUEST_NAME": "Tom & <Jerry> {TOTAL}", "TOTAL": "1"})
		require.NoError(t, err)
		assert.Equal(t, "Tom & <Jerry> {TOTAL} 1", text(t, out))
	})

	t.Run("untouched template", func(t *testing.T) {
		tmpl := build(t, NewDocument().Paragraph("No placeholders"))
		out, err := Fill(tmpl, values)
		require.NoError(t, err)
		assert.Equal(t, "No placeholders", text(t, out))
	})

	t.Run("not a docx", func(t *testing.T) {
		_, err := Fill([]byte("plain text"), values)
		assert.Error(t, err)
	})
}

// bodyDocx zips a bare word/document.xml around the given body markup.
func bodyDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFillRuns(t *testing.T) {
	values := map[string]string{"GUEST_NAME": "Ada", "TOTAL": "150.00"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "tab between label and value",
			in:   `<w:p><w:r><w:t>Guest Name:</w:t></w:r><w:r><w:tab/></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>{GUEST_NAME}</w:t></w:r></w:p>`,
			want: `<w:p><w:r><w:t>Guest Name:</w:t></w:r><w:r><w:tab/></w:r><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Ada</w:t></w:r></w:p>`,
		},
		{
			name: "self-closing text element",
			in:   `<w:p><w:r><w:t xml:space="preserve"/></w:r><w:r><w:t>Total: {TOTAL}</w:t></w:r></w:p>`,
			want: `<w:p><w:r><w:t xml:space="preserve"/></w:r><w:r><w:t xml:space="preserve">Total: 150.00</w:t></w:r></w:p>`,
		},
		{
			name: "token split over three runs",
			in:   `<w:p><w:r><w:t>Hi {GU</w:t></w:r><w:r><w:t>EST_</w:t></w:r><w:r><w:t>NAME}!</w:t></w:r><w:r><w:t> Bye</w:t></w:r></w:p>`,
			want: `<w:p><w:r><w:t xml:space="preserve">Hi Ada</w:t></w:r><w:r><w:t xml:space="preserve"></w:t></w:r><w:r><w:t xml:space="preserve">!</w:t></w:r><w:r><w:t> Bye</w:t></w:r></w:p>`,
		},
		{
			name: "unknown placeholder untouched",
			in:   `<w:p><w:r><w:t>{OTHER}</w:t></w:r></w:p>`,
			want: `<w:p><w:r><w:t>{OTHER}</w:t></w:r></w:p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(fillPart([]byte(tt.in), values)))
		})
	}

	t.Run("plain text keeps tabs", func(t *testing.T) {
		tmpl := bodyDocx(t,
			`<w:p><w:r><w:t>Guest Name:</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>{GUEST_NAME}</w:t></w:r></w:p>`+
				`<w:p><w:r><w:t xml:space="preserve"/></w:r><w:r><w:t>Total: {TOTAL}</w:t></w:r></w:p>`)

		out, err := Fill(tmpl, values)
		require.NoError(t, err)
		assert.Equal(t, "Guest Name:\tAda\nTotal: 150.00", text(t, out))
	})
}

func TestSplitParagraphs(t *testing.T) {
	doc := `<w:body><w:p><w:r><w:t>a</w:t></w:r></w:p><w:p/>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p w:rsidR="1"><w:r><w:t>c</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`</w:tc></w:tr></w:tbl><w:p><w:pPr/><w:r><w:t>d</w:t></w:r></w:p></w:body>`

	body, cells := splitParagraphs(doc)
	require.Len(t, body, 2)
	require.Len(t, cells, 2)
	assert.Contains(t, doc[body[0].start:body[0].end], ">a<")
	assert.Contains(t, doc[body[1].start:body[1].end], ">d<")
	assert.Contains(t, doc[cells[1].start:cells[1].end], ">c<")
}

func sampleReservation() models.Reservation {
	r := models.Reservation{ReceiptNo: "TEC-0001"}
	r.ReservationFields = models.ReservationFields{
		GuestName:     "Ada Obi",
		Contact:       "ada@mail.com",
		ApartmentType: "2 bedroom",
		Location:      "Gwarinpa",
		CheckIn:       "2025-01-10",
		CheckOut:      "2025-01-13",
		Nights:        models.Float(3),
		Rate:          models.Float(100),
		VAT:           models.Float(22.5),
		Total:         models.Float(322.5),
		AmountPaid:    models.Float(200),
		PaymentMethod: "Cash",
		PaymentDate:   "2025-01-09",
		Balance:       models.Float(122.5),
	}
	return r
}

func newExporter(t *testing.T) *Exporter {
	dir := t.TempDir()
	return &Exporter{
		RequestsDir:     filepath.Join(dir, "requests"),
		ExportsDir:      filepath.Join(dir, "exports"),
		ReceiptTemplate: filepath.Join(dir, "receipt_template.docx"),
		InvoiceTemplate: filepath.Join(dir, "invoice_template.docx"),
		Now:             func() time.Time { return time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC) },
	}
}

func TestCustomerRequest(t *testing.T) {
	e := newExporter(t)

	path, err := e.CustomerRequest(sampleReservation())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.RequestsDir, "CustomerRequest_TEC-0001.docx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(text(t, data), "\n")
	require.Len(t, lines, 17)
	assert.Equal(t, "Reservation Request", lines[0])
	assert.Equal(t, "Receipt No: TEC-0001", lines[1])
	assert.Equal(t, "Date: 2025-01-09", lines[2])
	assert.Equal(t, "Number of Nights: 3", lines[9])
	assert.Equal(t, "VAT: 22.50", lines[11])
	assert.Equal(t, "Balance: 122.50", lines[16])
}

func TestReceiptAndInvoice(t *testing.T) {
	e := newExporter(t)
	r := sampleReservation()

	t.Run("missing template", func(t *testing.T) {
		_, err := e.Receipt(r)
		assert.True(t, errors.Is(err, ErrTemplateMissing))
		_, err = e.Invoice(r)
		assert.True(t, errors.Is(err, ErrTemplateMissing))

		_, statErr := os.Stat(e.ExportsDir)
		assert.True(t, os.IsNotExist(statErr))
	})

	require.NoError(t, os.WriteFile(e.ReceiptTemplate, build(t, NewDocument().
		Paragraph("Receipt {RECEIPT_NO} / {BOOKING_REF} dated {DATE}").
		table([][]string{{"Guest", "{GUEST_NAME}"}, {"Total", "{TOTAL}"}, {"Balance", "{BALANCE}"}})), 0o644))
	require.NoError(t, os.WriteFile(e.InvoiceTemplate, build(t, NewDocument().
		Paragraph("Invoice {INVOICE_NO}").
		Paragraph("{DAYS} x {UNIT_PRICE} = {SUBTOTAL}; VAT {VAT}; due {TOTAL_DUE}")), 0o644))

	t.Run("receipt", func(t *testing.T) {
		path, err := e.Receipt(r)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(e.ExportsDir, "Receipt_TEC-0001.docx"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		got := text(t, data)
		assert.Contains(t, got, "Receipt TEC-0001 / TEC-0001 dated 2025-01-09")
		assert.Contains(t, got, "Ada Obi")
		assert.Contains(t, got, "322.50")
		assert.Contains(t, got, "122.50")
	})

	t.Run("invoice recomputes subtotal", func(t *testing.T) {
		edited := r
		edited.VAT = models.Text("waived")

		path, err := e.Invoice(edited)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, text(t, data), "3 x 100.00 = 300.00; VAT waived; due 322.50")
	})

	t.Run("same guest name, different receipts", func(t *testing.T) {
		other := r
		other.ReceiptNo = "TEC-0002"
		p1, err := e.Receipt(r)
		require.NoError(t, err)
		p2, err := e.Receipt(other)
		require.NoError(t, err)
		assert.NotEqual(t, p1, p2)
	})
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c_d", SafeFilename(`a/b\c?d`))
	assert.Equal(t, "TEC-0001", SafeFilename("TEC-0001"))
}
