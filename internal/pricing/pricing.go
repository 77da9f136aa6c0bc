// Package pricing derives VAT, total and balance for a stay.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// VATRate is applied to nights × rate.
var VATRate = decimal.RequireFromString("0.075")

type Quote struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
	Balance  decimal.Decimal
}

// ParseAmount reads a submitted number. Anything unparseable is 0.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func Calculate(nights, rate, amountPaid float64) Quote {
	subtotal := decimal.NewFromFloat(rate).Mul(decimal.NewFromFloat(nights))
	vat := subtotal.Mul(VATRate)
	total := subtotal.Add(vat)
	return Quote{
		Subtotal: subtotal,
		VAT:      vat,
		Total:    total,
		Balance:  total.Sub(decimal.NewFromFloat(amountPaid)),
	}
}

// Subtotal is rate × nights formatted for documents.
func Subtotal(rate, nights float64) string {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromFloat(nights)).StringFixed(2)
}

type Display struct {
	Subtotal string `json:"subtotal"`
	VAT      string `json:"vat"`
	Total    string `json:"total"`
	Balance  string `json:"balance"`
}

func (q Quote) Fixed() Display {
	return Display{
		Subtotal: q.Subtotal.StringFixed(2),
		VAT:      q.VAT.StringFixed(2),
		Total:    q.Total.StringFixed(2),
		Balance:  q.Balance.StringFixed(2),
	}
}

// Floats returns VAT, total and balance unrounded for storage.
func (q Quote) Floats() (vat, total, balance float64) {
	return q.VAT.InexactFloat64(), q.Total.InexactFloat64(), q.Balance.InexactFloat64()
}
