// Package codec maps reservations to spreadsheet rows keyed by header text.
package codec

import (
	"math"
	"strconv"
	"strings"

	"github.com/tamecovita/reservations/internal/models"
	"github.com/tamecovita/reservations/internal/pricing"
)

const (
	ReceiptNo     = "Receipt No"
	GuestName     = "Guest Name"
	Contact       = "Contact/Email"
	ApartmentType = "Apartment Type"
	Location      = "Place / Location"
	CheckIn       = "Check-In Date"
	CheckOut      = "Check-Out Date"
	Nights        = "Number of Nights"
	Rate          = "Rate per Night"
	VAT           = "VAT"
	Total         = "Total Amount"
	AmountPaid    = "Amount Paid"
	PaymentMethod = "Payment Method"
	PaymentDate   = "Payment Date"
	Balance       = "Balance"
)

// Row is one reservation keyed by header text.
type Row map[string]string

// NumberPolicy turns submitted text into a numeric cell.
type NumberPolicy func(string) models.Number

// SubmissionNumber is used for guest submissions: unparseable input becomes 0.
func SubmissionNumber(s string) models.Number {
	return models.Float(pricing.ParseAmount(s))
}

// EditNumber is used for admin edits: unparseable input is kept as text.
func EditNumber(s string) models.Number {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Text(s)
	}
	return models.Float(v)
}

type column struct {
	header string
	text   func(*models.Reservation) *string
	number func(*models.Reservation) *models.Number
}

func (c column) numeric() bool {
	return c.number != nil
}

var columns = []column{
	{header: ReceiptNo, text: func(r *models.Reservation) *string { return &r.ReceiptNo }},
	{header: GuestName, text: func(r *models.Reservation) *string { return &r.GuestName }},
	{header: Contact, text: func(r *models.Reservation) *string { return &r.Contact }},
	{header: ApartmentType, text: func(r *models.Reservation) *string { return &r.ApartmentType }},
	{header: Location, text: func(r *models.Reservation) *string { return &r.Location }},
	{header: CheckIn, text: func(r *models.Reservation) *string { return &r.CheckIn }},
	{header: CheckOut, text: func(r *models.Reservation) *string { return &r.CheckOut }},
	{header: Nights, number: func(r *models.Reservation) *models.Number { return &r.Nights }},
	{header: Rate, number: func(r *models.Reservation) *models.Number { return &r.Rate }},
	{header: VAT, number: func(r *models.Reservation) *models.Number { return &r.VAT }},
	{header: Total, number: func(r *models.Reservation) *models.Number { return &r.Total }},
	{header: AmountPaid, number: func(r *models.Reservation) *models.Number { return &r.AmountPaid }},
	{header: PaymentMethod, text: func(r *models.Reservation) *string { return &r.PaymentMethod }},
	{header: PaymentDate, text: func(r *models.Reservation) *string { return &r.PaymentDate }},
	{header: Balance, number: func(r *models.Reservation) *models.Number { return &r.Balance }},
}

// Headers is the canonical column order of the reservations sheet.
var Headers = func() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.header
	}
	return h
}()

// IsNumeric reports whether header names a numeric column.
func IsNumeric(header string) bool {
	for _, c := range columns {
		if c.header == header {
			return c.numeric()
		}
	}
	return false
}

func Encode(r models.Reservation) Row {
	row := make(Row, len(columns))
	for _, c := range columns {
		if c.numeric() {
			row[c.header] = c.number(&r).String()
		} else {
			row[c.header] = *c.text(&r)
		}
	}
	return row
}

// Cells returns the typed cell values of r in header order.
func Cells(r models.Reservation) []any {
	cells := make([]any, len(columns))
	for i, c := range columns {
		if c.numeric() {
			cells[i] = c.number(&r).Cell()
		} else {
			cells[i] = *c.text(&r)
		}
	}
	return cells
}

// Zip pairs headers with cells. Extra entries on either side are dropped.
func Zip(headers, cells []string) Row {
	n := min(len(headers), len(cells))
	row := make(Row, n)
	for i := 0; i < n; i++ {
		row[headers[i]] = cells[i]
	}
	return row
}

func Decode(row Row, policy NumberPolicy) models.Reservation {
	var r models.Reservation
	Apply(&r, row, policy)
	return r
}

// Apply overwrites the fields of r present in row. Unknown headers are ignored.
func Apply(r *models.Reservation, row Row, policy NumberPolicy) {
	for _, c := range columns {
		v, ok := row[c.header]
		if !ok {
			continue
		}
		if c.numeric() {
			*c.number(r) = policy(v)
		} else {
			*c.text(r) = v
		}
	}
}
