package models

import (
	"time"
)

// PaymentMethods are the choices offered on the reservation form.
var PaymentMethods = []string{"Cash", "Credit Card", "Debit Card", "Bank Transfer", "PayPal", "Google Pay"}

type ReservationFields struct {
	GuestName     string `json:"guest_name"`
	Contact       string `json:"contact"`
	ApartmentType string `json:"apartment_type"`
	Location      string `json:"location"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Nights        Number `json:"nights"`
	Rate          Number `json:"rate"`
	VAT           Number `json:"vat"`
	Total         Number `json:"total"`
	AmountPaid    Number `json:"amount_paid"`
	PaymentMethod string `json:"payment_method"`
	PaymentDate   string `json:"payment_date"`
	Balance       Number `json:"balance"`
}

// Reservation is one row of the reservations table. Seq keeps insertion order.
type Reservation struct {
	Seq               uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	ReceiptNo         string `json:"receipt_no" gorm:"uniqueIndex;not null"`
	ReservationFields `gorm:"embedded"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
